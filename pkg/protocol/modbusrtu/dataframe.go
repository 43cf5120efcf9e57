package modbusrtu

import (
	modbusrturuntime "weldgateway/pkg/protocol/modbusrtu/runtime"
	"weldgateway/pkg/utils/binutil"
	"weldgateway/pkg/utils/crcutil"

	"k8s.io/klog/v2"
)

/**
modbus 协议 ADU = 地址(1) + pdu(253) + 16位校验(2) = 256
modbus Rtu报文
地址(1)   +   pdu(253) = 256
*/

// ModBusRtuDataFrame is one read request and the buffer its response lands in.
type ModBusRtuDataFrame struct {
	Slave             uint8
	FunctionCode      uint8
	StartAddress      uint16
	Quantity          uint16
	DataFrame         []byte
	ResponseDataFrame []byte
}

// NewReadFrame builds a read request.
// 01 03 00 00 00 0A C5 CD
// 01     slave
// 03     function code
// 00 00  start address
// 00 0A  register count
// C5 CD  crc16
func NewReadFrame(slave uint8, functionCode uint8, startAddress uint16, quantity uint16) *ModBusRtuDataFrame {
	df := &ModBusRtuDataFrame{
		Slave:        slave,
		FunctionCode: functionCode,
		StartAddress: startAddress,
		Quantity:     quantity,
	}
	message := make([]byte, 6, 8)
	message[0] = slave
	message[1] = functionCode
	binutil.WriteUint16(message[2:], startAddress)
	binutil.WriteUint16(message[4:], quantity)
	crc16 := make([]byte, 2)
	binutil.WriteUint16(crc16, crcutil.CheckCrc16sum(message))
	df.DataFrame = append(message, crc16...)
	// slave(1) + fc(1) + byte count(1) + data + crc(2)
	df.ResponseDataFrame = make([]byte, int(quantity)*2+5)
	return df
}

// ValidateMessage checks the first least bytes of the response and returns the
// register payload.
func (df *ModBusRtuDataFrame) ValidateMessage(least int) ([]byte, error) {
	if least < 5 {
		return nil, modbusrturuntime.ErrModbusRtuDataLengthNotEnough
	}
	buf := df.ResponseDataFrame[:least]

	if buf[0] != df.Slave {
		klog.V(2).InfoS("Unexpected slave in modbus rtu response", "want", df.Slave, "got", buf[0])
		return nil, modbusrturuntime.ErrServerBadResp
	}

	functionCode := buf[1]
	if functionCode&0x80 > 0 {
		klog.V(2).InfoS("Failed to parse modbus rtu message", "error code", buf[2])
		return nil, modbusrturuntime.ErrMessageFunctionCodeError
	}
	if functionCode != df.FunctionCode {
		return nil, modbusrturuntime.ErrMessageFunctionCodeError
	}

	byteDataLength := int(buf[2])
	if byteDataLength != int(df.Quantity)*2 || byteDataLength+5 > least {
		return nil, modbusrturuntime.ErrModbusRtuDataLengthNotEnough
	}
	sum := crcutil.CheckCrc16sum(buf[:byteDataLength+3])
	crc := binutil.ParseUint16BigEndian(buf[byteDataLength+3 : byteDataLength+5])
	if sum != crc {
		klog.V(2).InfoS("Failed to check CRC16")
		return nil, modbusrturuntime.ErrCRC16Error
	}
	return buf[3 : byteDataLength+3], nil
}
