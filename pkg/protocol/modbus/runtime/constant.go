package runtime

import "errors"

var ErrBadConn = errors.New("modbus tcp bad connection")
var ErrReconnectThrottled = errors.New("modbus tcp reconnect throttled")
var ErrServerBadResp = errors.New("modbus tcp server bad response")

const (
	DefaultPort = "502"
	// MaxReadRegisters is the FC03 limit of one request
	MaxReadRegisters = 125
)
