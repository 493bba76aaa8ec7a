package flags

import (
	"flag"
	"testing"

	"github.com/urfave/cli/v2"
)

func TestVersionWithCommit(t *testing.T) {
	tests := []struct {
		commit, date, want string
	}{
		{"", "", Version},
		{"abc", "", Version},
		{"0123456789abcdef", "", Version + "-01234567"},
		{"0123456789abcdef", "20260101", Version + "-01234567-20260101"},
	}
	for _, tt := range tests {
		if got := VersionWithCommit(tt.commit, tt.date); got != tt.want {
			t.Errorf("VersionWithCommit(%q, %q) = %q, want %q", tt.commit, tt.date, got, tt.want)
		}
	}
}

func TestCheckExclusive(t *testing.T) {
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	set.String("a", "", "")
	set.String("b", "", "")
	ctx := cli.NewContext(cli.NewApp(), set, nil)

	if err := set.Parse([]string{"--a", "x"}); err != nil {
		t.Fatal(err)
	}
	if err := CheckExclusive(ctx, "a", "b"); err != nil {
		t.Fatalf("one flag set: %v", err)
	}
	if err := set.Parse([]string{"--a", "x", "--b", "y"}); err != nil {
		t.Fatal(err)
	}
	if err := CheckExclusive(ctx, "a", "b"); err == nil {
		t.Fatal("expected an error with both flags set")
	}
}
