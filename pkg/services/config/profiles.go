package config

import (
	"context"
	"fmt"
	"sort"

	"github.com/de-tools/mpesa-etl/pkg/models/domain"
	"gopkg.in/ini.v1"
)

// S3Profile is an export destination backed by an S3 bucket.
type S3Profile struct {
	Bucket      string
	Prefix      string
	Region      string
	AWSProfile  string
	EndpointURL string
}

// WarehouseProfile is an export destination backed by a SQL warehouse. Which fields are
// read depends on Driver.
type WarehouseProfile struct {
	Driver    string
	DSN       string
	Table     string
	Account   string
	User      string
	Password  string
	Database  string
	Schema    string
	Warehouse string
	Role      string
	Host      string
	HTTPPath  string
	Token     string
	Port      int
}

type Profile struct {
	Name      string
	Type      domain.ProfileType
	S3        S3Profile
	Warehouse WarehouseProfile
}

type ProfileRegistry interface {
	GetProfiles(ctx context.Context) ([]domain.ConfigProfile, error)
	GetProfile(ctx context.Context, name string) (*Profile, error)
}

type profileRegistry struct {
	cfg *ini.File
}

// NewProfileRegistry loads export destinations from an ini file, one section per
// profile:
//
//	[archive]
//	s3_bucket = mpesa-archive
//	s3_prefix = etl
//
//	[finance]
//	driver = snowflake
//	account = xy12345
func NewProfileRegistry(path string) (ProfileRegistry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles from %s: %w: %w", path, domain.ErrInvalidConfig, err)
	}
	return &profileRegistry{cfg: cfg}, nil
}

func (pr *profileRegistry) GetProfiles(_ context.Context) ([]domain.ConfigProfile, error) {
	var profiles []domain.ConfigProfile
	for _, section := range pr.cfg.Sections() {
		if len(section.Keys()) == 0 {
			continue
		}
		profileType, err := typeOf(section)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, domain.ConfigProfile{Name: section.Name(), Type: profileType})
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].Name < profiles[j].Name })
	return profiles, nil
}

func (pr *profileRegistry) GetProfile(_ context.Context, name string) (*Profile, error) {
	section, err := pr.cfg.GetSection(name)
	if err != nil || len(section.Keys()) == 0 {
		return nil, fmt.Errorf("%w: profile %s not found", domain.ErrInvalidConfig, name)
	}

	profileType, err := typeOf(section)
	if err != nil {
		return nil, err
	}

	profile := &Profile{Name: name, Type: profileType}
	switch profileType {
	case domain.ProfileTypeS3:
		profile.S3 = S3Profile{
			Bucket:      section.Key("s3_bucket").String(),
			Prefix:      section.Key("s3_prefix").String(),
			Region:      section.Key("region").String(),
			AWSProfile:  section.Key("aws_profile").String(),
			EndpointURL: section.Key("endpoint_url").String(),
		}
	case domain.ProfileTypeWarehouse:
		profile.Warehouse = WarehouseProfile{
			Driver:    section.Key("driver").String(),
			DSN:       section.Key("dsn").String(),
			Table:     section.Key("table").MustString("enriched_transactions"),
			Account:   section.Key("account").String(),
			User:      section.Key("user").String(),
			Password:  section.Key("password").String(),
			Database:  section.Key("database").String(),
			Schema:    section.Key("schema").String(),
			Warehouse: section.Key("warehouse").String(),
			Role:      section.Key("role").String(),
			Host:      section.Key("host").String(),
			HTTPPath:  section.Key("http_path").String(),
			Token:     section.Key("token").String(),
			Port:      section.Key("port").MustInt(443),
		}
	}
	return profile, nil
}

func typeOf(section *ini.Section) (domain.ProfileType, error) {
	switch {
	case section.HasKey("s3_bucket"):
		return domain.ProfileTypeS3, nil
	case section.HasKey("driver"):
		return domain.ProfileTypeWarehouse, nil
	default:
		return "", fmt.Errorf("%w: profile %s has neither s3_bucket nor driver", domain.ErrInvalidConfig, section.Name())
	}
}
