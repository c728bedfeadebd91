package storeconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"empty", Config{}, true},
		{"one backend", Config{Backends: []BackendConfig{{Name: "localstore"}}}, false},
		{"missing name", Config{Backends: []BackendConfig{{}}}, true},
		{"duplicate id", Config{Backends: []BackendConfig{{Name: "grpc"}, {Name: "grpc"}}}, true},
		{"aliased duplicates ok", Config{Backends: []BackendConfig{{Name: "grpc", ID: "a"}, {Name: "grpc", ID: "b"}}}, false},
		{"write all", Config{WritePolicy: "all", Backends: []BackendConfig{{Name: "localstore"}}}, false},
		{"bad policy", Config{WritePolicy: "quorum", Backends: []BackendConfig{{Name: "localstore"}}}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate: err=%v, wantErr=%v", err, tc.wantErr)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stores.json")
	body := `{
  "write_policy": "all",
  "backends": [
    {"name":"localstore", "config":{"localstore-dir":"/tmp/records"}},
    {"name":"grpc", "id":"remote", "config":{"grpc-target":"localhost:7421"}}
  ]
}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.WritePolicy != "all" || len(cfg.Backends) != 2 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Backends[1].ID != "remote" || cfg.Backends[1].Config["grpc-target"] != "localhost:7421" {
		t.Fatalf("unexpected backend: %+v", cfg.Backends[1])
	}

	if _, err := LoadFile(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
