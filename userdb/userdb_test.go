package userdb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/brianmayclone/anyos-userland/abi"
	"github.com/brianmayclone/anyos-userland/kernel/anyos"
	"github.com/brianmayclone/anyos-userland/mem"
	"github.com/brianmayclone/anyos-userland/rt"
	"github.com/brianmayclone/anyos-userland/stdio"
)

const passwdText = `# accounts
root:d41d8cd98f00b204e9800998ecf8427e:0:0:Superuser:/root
alice:900150983cd24fb0d6963f7d28e17f72:1000:100:Alice:/home/alice

badline:without:enough
bob:ab56b4d92b40713acc5af89985d4b786:1001:100:Bob:/home/bob
`

const groupText = `# groups
wheel:0:root
users:100:alice,bob
empty:5:
short:line
`

func TestParsePasswd(t *testing.T) {
	users := ParsePasswd(passwdText)
	if len(users) != 3 {
		t.Fatalf("parsed %d users: %v", len(users), users)
	}
	alice := users[1]
	if alice.Name != "alice" || alice.Uid != 1000 || alice.Gid != 100 {
		t.Fatalf("alice = %+v", alice)
	}
	if alice.FullName != "Alice" || alice.HomeDir != "/home/alice" {
		t.Fatalf("alice = %+v", alice)
	}
}

func TestParseGroup(t *testing.T) {
	groups := ParseGroup(groupText)
	if len(groups) != 3 {
		t.Fatalf("parsed %d groups: %v", len(groups), groups)
	}
	users := groups[1]
	if users.Name != "users" || users.Gid != 100 {
		t.Fatalf("users = %+v", users)
	}
	if len(users.Members) != 2 || users.Members[0] != "alice" || users.Members[1] != "bob" {
		t.Fatalf("members = %v", users.Members)
	}
	if len(groups[2].Members) != 0 {
		t.Fatalf("empty group has members: %v", groups[2].Members)
	}
}

func bootOpener(t *testing.T) func(path string) (*stdio.Stream, error) {
	t.Helper()
	root := t.TempDir()
	users := filepath.Join(root, "System", "users")
	if err := os.MkdirAll(users, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(users, "passwd"), []byte(passwdText), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(users, "group"), []byte(groupText), 0644); err != nil {
		t.Fatal(err)
	}
	m := anyos.NewMachine()
	img := mem.NewImage(0, 0)
	k := anyos.NewKernel(m, img, anyos.Config{Root: root})
	p := rt.Boot(k, img)
	return func(path string) (*stdio.Stream, error) {
		return stdio.Open(p.Sys, p.Heap, p.Mem, path, "r")
	}
}

func TestGetpwnam(t *testing.T) {
	open := bootOpener(t)
	u, err := Getpwnam(open, "bob")
	if err != nil {
		t.Fatal(err)
	}
	if u.Uid != 1001 || u.HomeDir != "/home/bob" {
		t.Fatalf("bob = %+v", u)
	}
	if _, err := Getpwnam(open, "mallory"); err != abi.ENOENT {
		t.Fatalf("unknown user = %v, want ENOENT", err)
	}
}

func TestGetpwuid(t *testing.T) {
	open := bootOpener(t)
	u, err := Getpwuid(open, 0)
	if err != nil {
		t.Fatal(err)
	}
	if u.Name != "root" {
		t.Fatalf("uid 0 = %+v", u)
	}
}

func TestGetgrnam(t *testing.T) {
	open := bootOpener(t)
	g, err := Getgrnam(open, "wheel")
	if err != nil {
		t.Fatal(err)
	}
	if g.Gid != 0 || len(g.Members) != 1 || g.Members[0] != "root" {
		t.Fatalf("wheel = %+v", g)
	}
	if _, err := Getgrnam(open, "nogroup"); err != abi.ENOENT {
		t.Fatalf("unknown group = %v, want ENOENT", err)
	}
}
