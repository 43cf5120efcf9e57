package options

import (
	"sort"
	"strconv"
	"time"

	"weldgateway/pkg/runtime"
	"weldgateway/pkg/sender"
	v1 "weldgateway/pkg/v1"

	"k8s.io/apimachinery/pkg/util/validation/field"
)

func Validate(o *Options) []error {
	var errs []error
	if err := o.BaseOptions.ValidateAndApply(); err != nil {
		errs = append(errs, err)
	}
	if fieldErrs := ValidateOptions(o); len(fieldErrs) > 0 {
		errs = append(errs, fieldErrs.ToAggregate().Errors()...)
	}
	return errs
}

// ValidateOptions checks everything but logging, which is validated when it
// is applied.
func ValidateOptions(o *Options) field.ErrorList {
	var allErrs field.ErrorList
	if port, err := strconv.Atoi(o.Port); err != nil || port <= 0 || port > 65535 {
		allErrs = append(allErrs, field.Invalid(field.NewPath("port"), o.Port, "must be a port number between 1 and 65535"))
	}
	if _, err := time.LoadLocation(o.Timezone); err != nil {
		allErrs = append(allErrs, field.Invalid(field.NewPath("timezone"), o.Timezone, err.Error()))
	}
	allErrs = append(allErrs, validatePositive(o.Wait.Duration, field.NewPath("graceful-timeout"))...)
	allErrs = append(allErrs, validatePositive(o.TelemetryPeriod.Duration, field.NewPath("telemetry-period"))...)
	allErrs = append(allErrs, validatePositive(o.ReconnectPeriod.Duration, field.NewPath("reconnect-period"))...)
	allErrs = append(allErrs, validatePositive(o.PublishTimeout.Duration, field.NewPath("publish-timeout"))...)
	if (len(o.CertFile) == 0) != (len(o.KeyFile) == 0) {
		allErrs = append(allErrs, field.Required(field.NewPath("key-file"), "cert-file and key-file must be set together"))
	}

	names := make(map[string]bool, len(o.Devices))
	for i, d := range o.Devices {
		fldPath := field.NewPath("devices").Index(i)
		if d == nil {
			allErrs = append(allErrs, field.Required(fldPath, ""))
			continue
		}
		allErrs = append(allErrs, ValidateDevice(d, fldPath)...)
		if names[d.Name] {
			allErrs = append(allErrs, field.Duplicate(fldPath.Child("name"), d.Name))
		}
		names[d.Name] = true
	}
	return allErrs
}

func ValidateDevice(d *v1.IDockDevice, fldPath *field.Path) field.ErrorList {
	allErrs := runtime.ValidateObjectMeta(d.Name, fldPath, runtime.DeviceName)
	if len(d.DeviceType) > 0 {
		if _, ok := v1.DeviceTypeMap[d.DeviceType]; !ok {
			allErrs = append(allErrs, field.NotSupported(fldPath.Child("deviceType"), d.DeviceType, v1.DeviceTypes()))
		}
	}
	if len(d.Port) == 0 {
		allErrs = append(allErrs, field.Required(fldPath.Child("port"), ""))
	}
	if len(d.Framing) > 0 {
		if _, ok := runtime.StringToFraming[d.Framing]; !ok {
			allErrs = append(allErrs, field.NotSupported(fldPath.Child("framing"), d.Framing, keys(runtime.FramingToString)))
		}
	}
	if len(d.Parity) > 0 {
		if _, ok := runtime.StringToParity[d.Parity]; !ok {
			allErrs = append(allErrs, field.NotSupported(fldPath.Child("parity"), d.Parity, keys(runtime.ParityToString)))
		}
	}
	if len(d.StopBits) > 0 {
		if _, ok := runtime.StringToStopBits[d.StopBits]; !ok {
			allErrs = append(allErrs, field.NotSupported(fldPath.Child("stopBits"), d.StopBits, keys(runtime.StopBitsToString)))
		}
	}
	if d.BaudRate < 0 {
		allErrs = append(allErrs, field.Invalid(fldPath.Child("baudRate"), d.BaudRate, "must be positive"))
	}
	if d.DataBits != 0 && (d.DataBits < 5 || d.DataBits > 8) {
		allErrs = append(allErrs, field.Invalid(fldPath.Child("dataBits"), d.DataBits, "must be between 5 and 8"))
	}
	if d.Slave > 247 {
		allErrs = append(allErrs, field.Invalid(fldPath.Child("slave"), d.Slave, "must be between 1 and 247"))
	}
	if d.Timeout != nil {
		allErrs = append(allErrs, validatePositive(d.Timeout.Duration, fldPath.Child("timeout"))...)
	}
	if d.TelemetryPeriod != nil {
		allErrs = append(allErrs, validatePositive(d.TelemetryPeriod.Duration, fldPath.Child("telemetryPeriod"))...)
	}
	if d.ReconnectPeriod != nil {
		allErrs = append(allErrs, validatePositive(d.ReconnectPeriod.Duration, fldPath.Child("reconnectPeriod"))...)
	}
	if len(d.ConnectionString) == 0 {
		allErrs = append(allErrs, field.Required(fldPath.Child("connectionString"), ""))
	} else if _, err := sender.ParseConnectionString(d.Name, d.ConnectionString); err != nil {
		// the value carries a shared access key
		allErrs = append(allErrs, field.Invalid(fldPath.Child("connectionString"), "<redacted>", err.Error()))
	}
	return allErrs
}

func validatePositive(d time.Duration, fldPath *field.Path) field.ErrorList {
	if d <= 0 {
		return field.ErrorList{field.Invalid(fldPath, d.String(), "must be greater than 0")}
	}
	return nil
}

func keys[K comparable](m map[K]string) []string {
	out := make([]string, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
