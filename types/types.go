package types

import (
	"database/sql/driver"
	"fmt"
)

// Flavor is the classification tag of a discovered ISO image with the
// implementation of the Valuer and Scanner interface.
type Flavor string

// Known flavors. Generic is the fallback when no classifier rule matches.
const (
	FlavorUbuntuServer  Flavor = "ubuntu-server"
	FlavorUbuntuDesktop Flavor = "ubuntu-desktop"
	FlavorKaliInstaller Flavor = "kali-installer"
	FlavorGeneric       Flavor = "generic"
)

// Value implements the database/sql/driver Valuer interface.
func (f Flavor) Value() (driver.Value, error) {
	return driver.Value(string(f)), nil
}

// Scan implements the database/sql Scanner interface.
func (f *Flavor) Scan(src interface{}) error {
	var flavor *Flavor
	var err error
	switch src := src.(type) {
	case string:
		flavor, err = ParseFlavor(src)
	case []uint8:
		flavor, err = ParseFlavor(fmt.Sprintf("%s", src))
	default:
		return fmt.Errorf("incompatible type for Flavor: %T", src)
	}
	if err != nil {
		return err
	}
	*f = *flavor
	return nil
}

func (f Flavor) String() string {
	return string(f)
}

// MarshalYAML is
func (f Flavor) MarshalYAML() (interface{}, error) {
	return string(f), nil
}

// UnmarshalYAML is
func (f *Flavor) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var buff string
	if err := unmarshal(&buff); err != nil {
		return err
	}
	tmp, err := ParseFlavor(buff)
	if err != nil {
		return fmt.Errorf("failed to unmarshal Flavor: input=\"%s\"", buff)
	}
	*f = *tmp
	return nil
}

// ParseFlavor is
func ParseFlavor(s string) (*Flavor, error) {
	switch Flavor(s) {
	case FlavorUbuntuServer, FlavorUbuntuDesktop, FlavorKaliInstaller, FlavorGeneric:
		f := Flavor(s)
		return &f, nil
	}
	return nil, fmt.Errorf("unknown flavor: input=\"%s\"", s)
}
