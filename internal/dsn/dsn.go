// Copyright (c) 2025 Footprint
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package dsn normalizes the PostgreSQL connection string of the donation database.
// Users paste DSNs with passwords that were never URL-encoded; Normalize recovers
// the parts and rebuilds a string pgx can parse.
package dsn

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	ferrors "footprint/cli/internal/errors"
)

const defaultPort = "5432"

var portPattern = regexp.MustCompile(`^\d+$`)

// Info holds the parts of a donation database DSN.
type Info struct {
	User     string
	Password string
	Host     string
	Port     string
	Database string
	Params   map[string]string
}

func invalid(reason string) error {
	return ferrors.New(ferrors.ConfigInvalid, "donation DSN: "+reason)
}

// Parse splits a postgres:// or postgresql:// DSN into its parts. It falls back to
// a manual split when the password contains characters url.Parse rejects.
func Parse(raw string) (*Info, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, invalid("empty")
	}
	lower := strings.ToLower(raw)
	var rest string
	switch {
	case strings.HasPrefix(lower, "postgresql://"):
		rest = raw[len("postgresql://"):]
	case strings.HasPrefix(lower, "postgres://"):
		rest = raw[len("postgres://"):]
	default:
		return nil, invalid("use postgres:// or postgresql://")
	}

	var info *Info
	if u, err := url.Parse(raw); err == nil && u.User != nil {
		info = fromURL(u)
	} else {
		info, err = split(rest)
		if err != nil {
			return nil, err
		}
	}
	if info.Port == "" {
		info.Port = defaultPort
	}
	if err := info.check(); err != nil {
		return nil, err
	}
	return info, nil
}

func fromURL(u *url.URL) *Info {
	info := &Info{
		User:     u.User.Username(),
		Host:     u.Hostname(),
		Port:     u.Port(),
		Database: strings.TrimSpace(strings.TrimPrefix(u.Path, "/")),
		Params:   map[string]string{},
	}
	info.Password, _ = u.User.Password()
	for k, v := range u.Query() {
		if len(v) > 0 {
			info.Params[k] = v[0]
		}
	}
	return info
}

// split handles user:password@host:port/db?params where the password may itself
// contain '@', ':' or '/'. The last '@' before the host separates credentials.
func split(rest string) (*Info, error) {
	at := strings.LastIndex(rest, "@")
	if at < 0 {
		return nil, invalid("missing user@host")
	}
	info := &Info{Params: map[string]string{}}
	creds, hostPart := rest[:at], rest[at+1:]
	if user, pass, ok := strings.Cut(creds, ":"); ok {
		info.User, info.Password = user, pass
	} else {
		info.User = creds
	}

	addr, dbPart, ok := strings.Cut(hostPart, "/")
	if !ok {
		return nil, invalid("missing /database")
	}
	if host, port, ok := strings.Cut(addr, ":"); ok {
		info.Host, info.Port = host, port
	} else {
		info.Host = addr
	}
	db, query, _ := strings.Cut(dbPart, "?")
	info.Database = strings.TrimSpace(db)
	for _, kv := range strings.Split(query, "&") {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			info.Params[k] = v
		}
	}
	return info, nil
}

func (i *Info) check() error {
	switch {
	case strings.TrimSpace(i.User) == "":
		return invalid("missing user")
	case strings.TrimSpace(i.Host) == "":
		return invalid("missing host")
	case i.Database == "":
		return invalid("missing database name")
	case !portPattern.MatchString(i.Port):
		return invalid("port must be numeric")
	}
	return nil
}

// String renders the canonical postgresql:// form with escaped credentials and
// parameters in sorted order.
func (i *Info) String() string {
	var b strings.Builder
	b.WriteString("postgresql://")
	creds := url.User(i.User)
	if i.Password != "" {
		creds = url.UserPassword(i.User, i.Password)
	}
	b.WriteString(creds.String())
	b.WriteString("@")
	b.WriteString(i.Host)
	b.WriteString(":")
	b.WriteString(i.Port)
	b.WriteString("/")
	b.WriteString(url.PathEscape(i.Database))
	if len(i.Params) > 0 {
		keys := make([]string, 0, len(i.Params))
		for k := range i.Params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for n, k := range keys {
			if n == 0 {
				b.WriteString("?")
			} else {
				b.WriteString("&")
			}
			b.WriteString(url.QueryEscape(k))
			b.WriteString("=")
			b.WriteString(url.QueryEscape(i.Params[k]))
		}
	}
	return b.String()
}

// Normalize parses raw and returns its canonical form.
func Normalize(raw string) (string, error) {
	info, err := Parse(raw)
	if err != nil {
		return "", err
	}
	return info.String(), nil
}
