// Package creds exposes the external credential collaborator: a lookup of
// stored logins keyed by site name. The core formats these into replay-ready
// instructions but never stores or validates credentials itself.
package creds

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Login is the credential record for one site. Either Username or Email must
// be present, plus a Password; LoginURL and Notes are optional.
type Login struct {
	Username string `yaml:"username,omitempty" json:"username,omitempty"`
	Email    string `yaml:"email,omitempty"    json:"email,omitempty"`
	Password string `yaml:"password"           json:"password"`
	LoginURL string `yaml:"loginUrl,omitempty" json:"loginUrl,omitempty"`
	Notes    string `yaml:"notes,omitempty"    json:"notes,omitempty"`
}

// Identity returns the username if set, otherwise the email.
func (l Login) Identity() string {
	if l.Username != "" {
		return l.Username
	}
	return l.Email
}

// Provider looks up a login by site name.
type Provider interface {
	Lookup(site string) (Login, error)
}

// NotFoundError is returned when no login exists for a site. It lists every
// known site key so the caller can self-correct.
type NotFoundError struct {
	Site  string
	Known []string
}

func (e *NotFoundError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("no credentials stored for site %q; the credential file is empty", e.Site)
	}
	return fmt.Sprintf("no credentials stored for site %q; known sites: %s", e.Site, strings.Join(e.Known, ", "))
}

// FieldMissingError is returned when a stored login lacks a required field.
type FieldMissingError struct {
	Site  string
	Field string
}

func (e *FieldMissingError) Error() string {
	return fmt.Sprintf("credentials for site %q are missing the %s field", e.Site, e.Field)
}

// FileProvider reads logins from a YAML file mapping site names to records:
//
//	shop.example:
//	  email: buyer@example.com
//	  password: hunter2
//	  loginUrl: https://shop.example/login
type FileProvider struct {
	path string
}

// NewFileProvider returns a provider backed by the YAML file at path. The
// file is re-read on every lookup so out-of-band edits take effect
// immediately.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

// Lookup returns the login for site. A missing file behaves like an empty
// one.
func (p *FileProvider) Lookup(site string) (Login, error) {
	logins, err := p.load()
	if err != nil {
		return Login{}, err
	}

	login, ok := logins[site]
	if !ok {
		known := make([]string, 0, len(logins))
		for k := range logins {
			known = append(known, k)
		}
		sort.Strings(known)
		return Login{}, &NotFoundError{Site: site, Known: known}
	}

	if login.Username == "" && login.Email == "" {
		return Login{}, &FieldMissingError{Site: site, Field: "username or email"}
	}
	if login.Password == "" {
		return Login{}, &FieldMissingError{Site: site, Field: "password"}
	}
	return login, nil
}

func (p *FileProvider) load() (map[string]Login, error) {
	data, err := os.ReadFile(p.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read credential file %s: %w", p.path, err)
	}
	var logins map[string]Login
	if err := yaml.Unmarshal(data, &logins); err != nil {
		return nil, fmt.Errorf("parse credential file %s: %w", p.path, err)
	}
	return logins, nil
}
