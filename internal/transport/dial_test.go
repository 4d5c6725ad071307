package transport

import "testing"

func TestResolveFamily(t *testing.T) {
	cases := []struct {
		host string
		want family
	}{
		{"192.168.1.1", familyIPv4},
		{"localhost", familyIPv4}, // rewritten to 127.0.0.1 first
		{"::1", familyIPv6},
		{"fe80::1", familyIPv6},
		{"/tmp/sock", familyUnix},
		{"my.sock/path", familyUnix}, // "/" forces UNIX even though "." matched
		{"targethost", familyUnix},   // no "." and no ":" -> UNIX path
	}
	for _, c := range cases {
		_, got := resolveFamily(c.host)
		if got != c.want {
			t.Errorf("resolveFamily(%q) = %v, want %v", c.host, got, c.want)
		}
	}
}

func TestResolveFamilyRewritesLocalhost(t *testing.T) {
	host, fam := resolveFamily("localhost")
	if host != "127.0.0.1" {
		t.Fatalf("resolveFamily(localhost) host = %q, want 127.0.0.1", host)
	}
	if fam != familyIPv4 {
		t.Fatalf("resolveFamily(localhost) family = %v, want IPv4", fam)
	}
}
