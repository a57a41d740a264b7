package domain

import "fmt"

type ProfileType string

const (
	ProfileTypeS3        ProfileType = "s3"
	ProfileTypeWarehouse ProfileType = "warehouse"
)

// ConfigProfile names an export destination declared in the profiles file.
type ConfigProfile struct {
	Name string
	Type ProfileType
}

func (c ConfigProfile) String() string {
	return fmt.Sprintf("%s:%s", c.Type, c.Name)
}
