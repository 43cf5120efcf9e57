package iothub

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// SharedAccessSignature builds the SAS token IoT Hub accepts as the MQTT
// password for a device identity.
func SharedAccessSignature(hostName, deviceID, key string, expiry time.Time) (string, error) {
	decoded, err := base64.StdEncoding.DecodeString(key)
	if err != nil {
		return "", errors.Wrap(err, "decode shared access key")
	}
	resource := url.QueryEscape(fmt.Sprintf("%s/devices/%s", hostName, deviceID))
	se := strconv.FormatInt(expiry.Unix(), 10)

	mac := hmac.New(sha256.New, decoded)
	mac.Write([]byte(resource + "\n" + se))
	sig := url.QueryEscape(base64.StdEncoding.EncodeToString(mac.Sum(nil)))

	return fmt.Sprintf("SharedAccessSignature sr=%s&sig=%s&se=%s", resource, sig, se), nil
}
