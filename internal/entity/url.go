package entity

// NormalizedURL is the canonical, validated form of a scanned URL.
// Scheme and host are lower-cased; path, query and fragment keep their
// original case. Instances are built once per scan and never mutated.
type NormalizedURL struct {
	Original  string `json:"original"`
	Scheme    string `json:"scheme"`
	Host      string `json:"host"`
	Path      string `json:"path"`
	Query     string `json:"query"`
	Fragment  string `json:"fragment"`
	Canonical string `json:"canonical"`
}

// Hostname returns the host with any port stripped.
func (u *NormalizedURL) Hostname() string {
	for i := len(u.Host) - 1; i >= 0; i-- {
		if u.Host[i] == ':' {
			return u.Host[:i]
		}
		if u.Host[i] == ']' {
			break
		}
	}
	return u.Host
}
