package pgxproto

import (
	"fmt"
	"net/url"
	"os"
	"os/user"
	"strconv"
	"strings"

	"github.com/jackc/pgpassfile"
	"github.com/jackc/pgservicefile"
)

// Config is the set of session-level options a Handle is built with once a
// byte stream is already connected (see internal/handle.New). It does not
// perform the network dial or TLS/auth handshake itself — that is out of
// this driver's core scope — but it centralizes the DSN parsing, password
// file and service file lookups a caller's own dial step needs, following
// the teacher's pgconn.Config/ParseConfig split between parsed settings and
// connection establishment.
type Config struct {
	Host     string
	Port     uint16
	Database string
	User     string
	Password string

	// ClientEncoding is sent as the client_encoding startup parameter.
	ClientEncoding string

	// ArraySize is the number of rows fetched per round trip by Cursor's
	// buffered iteration, mirroring psycopg3's Cursor.arraysize.
	ArraySize int

	// FormatPreference selects whether new statements request Binary or
	// Text results by default; BindParams may still override per value.
	FormatPreference adaptFormat

	RuntimeParams map[string]string
}

// adaptFormat avoids an import cycle with internal/adapt for the one enum
// Config needs to expose; Cursor converts it to adapt.Format.
type adaptFormat int16

const (
	FormatText   adaptFormat = 0
	FormatBinary adaptFormat = 1
)

const (
	defaultPort           = 5432
	defaultArraySize      = 100
	defaultClientEncoding = "UTF8"
)

// ParseConfig parses a "postgres://" URL or a libpq keyword/value DSN into a
// Config, applying PGSERVICE/PGPASSFILE lookups the same way libpq does:
// explicit DSN values take precedence, then the named service's settings,
// then the password file, then environment variables, then these defaults.
func ParseConfig(connString string) (*Config, error) {
	settings, err := parseDSNSettings(connString)
	if err != nil {
		return nil, fmt.Errorf("pgxproto: cannot parse connection string: %w", err)
	}

	if service, ok := settings["service"]; ok {
		svcSettings, err := lookupService(service)
		if err != nil {
			return nil, err
		}
		for k, v := range svcSettings {
			if _, ok := settings[k]; !ok {
				settings[k] = v
			}
		}
	}

	applyEnvDefaults(settings)

	cfg := &Config{
		Host:           settings["host"],
		Database:       settings["dbname"],
		User:           settings["user"],
		Password:       settings["password"],
		ClientEncoding: defaultClientEncoding,
		ArraySize:      defaultArraySize,
		RuntimeParams:  map[string]string{},
	}

	if cfg.User == "" {
		if u, err := user.Current(); err == nil {
			cfg.User = u.Username
		}
	}

	if p, ok := settings["port"]; ok {
		n, err := strconv.ParseUint(p, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("pgxproto: invalid port %q", p)
		}
		cfg.Port = uint16(n)
	} else {
		cfg.Port = defaultPort
	}

	if enc, ok := settings["client_encoding"]; ok {
		cfg.ClientEncoding = enc
	}

	if cfg.Password == "" {
		if passfile, ok := settings["passfile"]; ok {
			if pw, found := lookupPassword(passfile, cfg.Host, strconv.Itoa(int(cfg.Port)), cfg.Database, cfg.User); found {
				cfg.Password = pw
			}
		}
	}

	for k, v := range settings {
		switch k {
		case "host", "port", "dbname", "user", "password", "service", "passfile", "client_encoding":
		default:
			cfg.RuntimeParams[k] = v
		}
	}

	return cfg, nil
}

func parseDSNSettings(connString string) (map[string]string, error) {
	if strings.HasPrefix(connString, "postgres://") || strings.HasPrefix(connString, "postgresql://") {
		return parseURLSettings(connString)
	}
	return parseKeywordSettings(connString)
}

func parseURLSettings(connString string) (map[string]string, error) {
	u, err := url.Parse(connString)
	if err != nil {
		return nil, err
	}
	settings := map[string]string{}
	if u.Host != "" {
		host, port, err := splitHostPort(u.Host)
		if err != nil {
			return nil, err
		}
		settings["host"] = host
		if port != "" {
			settings["port"] = port
		}
	}
	if u.User != nil {
		settings["user"] = u.User.Username()
		if pw, ok := u.User.Password(); ok {
			settings["password"] = pw
		}
	}
	if db := strings.TrimPrefix(u.Path, "/"); db != "" {
		settings["dbname"] = db
	}
	for k, vs := range u.Query() {
		if len(vs) > 0 {
			settings[k] = vs[0]
		}
	}
	return settings, nil
}

func splitHostPort(hostport string) (host, port string, err error) {
	i := strings.LastIndexByte(hostport, ':')
	if i < 0 {
		return hostport, "", nil
	}
	return hostport[:i], hostport[i+1:], nil
}

// parseKeywordSettings parses libpq's "key=value key2=value2" DSN form,
// honoring single-quoted values and backslash escapes within them.
func parseKeywordSettings(connString string) (map[string]string, error) {
	settings := map[string]string{}
	s := strings.TrimSpace(connString)
	for len(s) > 0 {
		s = strings.TrimSpace(s)
		if s == "" {
			break
		}
		eq := strings.IndexByte(s, '=')
		if eq < 0 {
			return nil, fmt.Errorf("missing '=' in connection string")
		}
		key := strings.TrimSpace(s[:eq])
		s = strings.TrimLeft(s[eq+1:], " \t")

		var value string
		if len(s) > 0 && s[0] == '\'' {
			var b strings.Builder
			i := 1
			for i < len(s) {
				switch s[i] {
				case '\\':
					if i+1 < len(s) {
						b.WriteByte(s[i+1])
						i += 2
						continue
					}
				case '\'':
					i++
					goto closed
				}
				b.WriteByte(s[i])
				i++
			}
			return nil, fmt.Errorf("unterminated quoted value for %q", key)
		closed:
			value = b.String()
			s = s[i:]
		} else {
			i := strings.IndexAny(s, " \t")
			if i < 0 {
				value = s
				s = ""
			} else {
				value = s[:i]
				s = s[i:]
			}
		}
		settings[key] = value
	}
	return settings, nil
}

func applyEnvDefaults(settings map[string]string) {
	envFor := map[string]string{
		"host":     "PGHOST",
		"port":     "PGPORT",
		"dbname":   "PGDATABASE",
		"user":     "PGUSER",
		"password": "PGPASSWORD",
		"service":  "PGSERVICE",
		"passfile": "PGPASSFILE",
	}
	for key, env := range envFor {
		if _, ok := settings[key]; ok {
			continue
		}
		if v := os.Getenv(env); v != "" {
			settings[key] = v
		}
	}
}

func lookupService(name string) (map[string]string, error) {
	filename := os.Getenv("PGSERVICEFILE")
	if filename == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("pgxproto: cannot locate home directory for .pg_service.conf: %w", err)
		}
		filename = home + "/.pg_service.conf"
	}

	sf, err := pgservicefile.ReadServicefile(filename)
	if err != nil {
		return nil, fmt.Errorf("pgxproto: cannot read service file %q: %w", filename, err)
	}
	svc, err := sf.GetService(name)
	if err != nil {
		return nil, fmt.Errorf("pgxproto: service %q not found in %q: %w", name, filename, err)
	}
	return svc.Settings, nil
}

func lookupPassword(passfile, host, port, database, username string) (password string, found bool) {
	pf, err := pgpassfile.ReadPassfile(passfile)
	if err != nil {
		return "", false
	}
	entry := pf.FindEntry(host, port, database, username)
	if entry == nil {
		return "", false
	}
	return entry.Password, true
}
