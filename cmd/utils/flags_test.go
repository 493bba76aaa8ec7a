package utils

import (
	"flag"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/urfave/cli/v2"
)

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"plain", "1,2,3", []string{"1", "2", "3"}},
		{"spaces", " 1 , 2 ,3 ", []string{"1", "2", "3"}},
		{"empty entries", "1,,  ,2", []string{"1", "2"}},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SplitAndTrim(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitAndTrim(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestMakeDatabase(t *testing.T) {
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	set.String(DataDirFlag.Name, filepath.Join(t.TempDir(), "ledger"), "")
	set.Int(CacheFlag.Name, 16, "")
	set.Int(HandlesFlag.Name, 16, "")
	ctx := cli.NewContext(cli.NewApp(), set, nil)

	db := MakeDatabase(ctx, false)
	if err := db.Put([]byte("k"), []byte("v")); err != nil {
		t.Fatalf("put: %v", err)
	}
	db.Close()

	db = MakeDatabase(ctx, true)
	defer db.Close()
	got, err := db.Get([]byte("k"))
	if err != nil || string(got) != "v" {
		t.Fatalf("get after reopen: %q, %v", got, err)
	}
}
