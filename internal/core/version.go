package core

import (
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"
	debversion "github.com/knqyf263/go-deb-version"
)

// ParseVersion parses a package version using Debian ordering rules.
func ParseVersion(value string) (debversion.Version, error) {
	parsed, err := debversion.NewVersion(value)
	if err != nil {
		return debversion.Version{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("invalid version %q", value)).
			WithCause(err)
	}
	return parsed, nil
}
