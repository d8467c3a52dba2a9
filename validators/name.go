package validators

import (
	"errors"
	"strings"
)

var ErrNameEmpty = errors.New("name is required")

func NameValidator(n string) error {
	if strings.TrimSpace(n) == "" {
		return ErrNameEmpty
	}

	return nil
}
