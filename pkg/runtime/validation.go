package runtime

import (
	"fmt"
	"k8s.io/apimachinery/pkg/util/validation/field"
	"strings"
)

type ValidateNameFunc func(name string) error

func ValidateObjectMeta(name string, fldPath *field.Path, nameFn ValidateNameFunc) field.ErrorList {
	var allErrs field.ErrorList
	if len(name) == 0 {
		allErrs = append(allErrs, field.Required(fldPath.Child("name"), ""))
	} else if err := nameFn(name); err != nil {
		allErrs = append(allErrs, field.Invalid(fldPath.Child("name"), name, err.Error()))
	}
	return allErrs
}

// DeviceName rejects names that cannot be used as a URL path segment.
func DeviceName(name string) error {
	if len(name) > 64 {
		return fmt.Errorf("must be no more than 64 characters")
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("must not contain '/' or '\\'")
	}
	return nil
}
