// Package userdb reads the account database: /System/users/passwd lines
// of the form name:md5hash:uid:gid:fullname:homedir and
// /System/users/group lines of the form name:gid:member,member.
package userdb

import (
	"io"
	"strings"

	"github.com/brianmayclone/anyos-userland/abi"
	"github.com/brianmayclone/anyos-userland/cstr"
	"github.com/brianmayclone/anyos-userland/stdio"
)

const (
	PasswdPath = "/System/users/passwd"
	GroupPath  = "/System/users/group"
)

// User is one passwd entry.
type User struct {
	Name     string
	Hash     string // md5 of the password
	Uid      int
	Gid      int
	FullName string
	HomeDir  string
}

// Group is one group entry.
type Group struct {
	Name    string
	Gid     int
	Members []string
}

// ParsePasswd parses the passwd format, skipping blank lines and lines
// starting with '#'. Malformed lines are skipped, not fatal; the original
// tolerates hand-edited files.
func ParsePasswd(data string) []User {
	var users []User
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" || line[0] == '#' {
			continue
		}
		f := strings.Split(line, ":")
		if len(f) != 6 {
			continue
		}
		users = append(users, User{
			Name:     f[0],
			Hash:     f[1],
			Uid:      cstr.Atoi(f[2]),
			Gid:      cstr.Atoi(f[3]),
			FullName: f[4],
			HomeDir:  f[5],
		})
	}
	return users
}

// ParseGroup parses the group format with the same tolerance.
func ParseGroup(data string) []Group {
	var groups []Group
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" || line[0] == '#' {
			continue
		}
		f := strings.Split(line, ":")
		if len(f) != 3 {
			continue
		}
		g := Group{Name: f[0], Gid: cstr.Atoi(f[1])}
		if f[2] != "" {
			g.Members = strings.Split(f[2], ",")
		}
		groups = append(groups, g)
	}
	return groups
}

func slurp(s *stdio.Stream) (string, error) {
	var b strings.Builder
	buf := make([]byte, 512)
	for {
		n, err := s.Read(buf)
		b.Write(buf[:n])
		if err != nil {
			if err == io.EOF {
				return b.String(), nil
			}
			return b.String(), err
		}
		if n == 0 {
			return b.String(), nil
		}
	}
}

func loadUsers(open func(path string) (*stdio.Stream, error)) ([]User, error) {
	s, err := open(PasswdPath)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	data, err := slurp(s)
	if err != nil {
		return nil, err
	}
	return ParsePasswd(data), nil
}

// Getpwnam looks a user up by name through the caller's opener, which the
// runtime binds to the buffered I/O layer.
func Getpwnam(open func(path string) (*stdio.Stream, error), name string) (*User, error) {
	users, err := loadUsers(open)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Name == name {
			return &users[i], nil
		}
	}
	return nil, abi.ENOENT
}

// Getpwuid looks a user up by uid.
func Getpwuid(open func(path string) (*stdio.Stream, error), uid int) (*User, error) {
	users, err := loadUsers(open)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Uid == uid {
			return &users[i], nil
		}
	}
	return nil, abi.ENOENT
}

// Getgrnam looks a group up by name.
func Getgrnam(open func(path string) (*stdio.Stream, error), name string) (*Group, error) {
	s, err := open(GroupPath)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	data, err := slurp(s)
	if err != nil {
		return nil, err
	}
	for _, g := range ParseGroup(data) {
		if g.Name == name {
			g := g
			return &g, nil
		}
	}
	return nil, abi.ENOENT
}
