package authsession

// Credentials is the secret bundle required to authenticate against the
// ERP back end. Instances live in process memory only for the duration of
// an operation; the persisted representation is always encrypted. The
// bundle is never logged and never returned to untrusted callers.
type Credentials struct {
	URL      string `json:"url"`
	Database string `json:"database"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate reports every required field that is empty as a single
// ValidationError. A nil return means the bundle is structurally complete;
// it says nothing about whether the credentials are accepted upstream.
func (c Credentials) Validate() error {
	var missing []string
	for _, field := range []struct {
		name  string
		value string
	}{
		{"url", c.URL},
		{"database", c.Database},
		{"username", c.Username},
		{"password", c.Password},
	} {
		if field.value == "" {
			missing = append(missing, field.name)
		}
	}

	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}
