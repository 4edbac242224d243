package config

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/marmos91/dittodav/pkg/content"
	"github.com/marmos91/dittodav/pkg/repository"
)

func TestCreateContentStore(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		store, err := CreateContentStore(ctx, &ContentConfig{Type: "memory"})
		if err != nil {
			t.Fatalf("CreateContentStore failed: %v", err)
		}
		if err := store.WriteContent(ctx, "id", []byte("data")); err != nil {
			t.Fatalf("WriteContent failed: %v", err)
		}
	})

	t.Run("filesystem", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "content")
		store, err := CreateContentStore(ctx, &ContentConfig{
			Type:       "filesystem",
			Filesystem: map[string]any{"path": dir},
		})
		if err != nil {
			t.Fatalf("CreateContentStore failed: %v", err)
		}
		if err := store.WriteContent(ctx, "id", []byte("data")); err != nil {
			t.Fatalf("WriteContent failed: %v", err)
		}
		data, err := content.ReadAll(ctx, store, "id")
		if err != nil || string(data) != "data" {
			t.Fatalf("ReadAll = %q, %v", data, err)
		}
	})

	t.Run("rate limited", func(t *testing.T) {
		store, err := CreateContentStore(ctx, &ContentConfig{
			Type:      "memory",
			RateLimit: RateLimitConfig{RequestsPerSecond: 100, Burst: 10},
		})
		if err != nil {
			t.Fatalf("CreateContentStore failed: %v", err)
		}
		if _, ok := store.(*content.RateLimitedStore); !ok {
			t.Fatalf("Expected *content.RateLimitedStore, got %T", store)
		}
		if err := store.WriteContent(ctx, "id", []byte("data")); err != nil {
			t.Fatalf("WriteContent failed: %v", err)
		}
	})

	t.Run("filesystem without path", func(t *testing.T) {
		_, err := CreateContentStore(ctx, &ContentConfig{Type: "filesystem", Filesystem: map[string]any{}})
		if err == nil || !strings.Contains(err.Error(), "path is required") {
			t.Fatalf("Expected missing path error, got %v", err)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := CreateContentStore(ctx, &ContentConfig{Type: "tape"})
		if err == nil {
			t.Fatal("Expected error for unknown type")
		}
	})
}

func TestDecodeS3Options(t *testing.T) {
	opts, err := decodeS3Options(map[string]any{
		"region":     "eu-west-1",
		"bucket":     "payloads",
		"key_prefix": "dav/",
		"endpoint":   "http://localhost:9000",
	})
	if err != nil {
		t.Fatalf("decodeS3Options failed: %v", err)
	}
	if opts.Bucket != "payloads" || opts.KeyPrefix != "dav/" || opts.Endpoint != "http://localhost:9000" {
		t.Errorf("Unexpected options: %+v", opts)
	}
	if opts.MaxRetries != 10 {
		t.Errorf("Expected default of 10 retries, got %d", opts.MaxRetries)
	}

	if _, err := decodeS3Options(map[string]any{"region": "eu-west-1"}); err == nil {
		t.Error("Expected error for missing bucket")
	}
	if _, err := decodeS3Options(map[string]any{"bucket": "payloads"}); err == nil {
		t.Error("Expected error for missing region")
	}
}

func TestBuildRootACL(t *testing.T) {
	acl := buildRootACL(&RepositoryConfig{AdminUser: "root"})
	if len(acl) != 2 || acl[0].Principal != "root" || acl[1].Principal != repository.Everyone {
		t.Fatalf("Unexpected default ACL: %+v", acl)
	}

	acl = buildRootACL(&RepositoryConfig{
		AdminUser: "root",
		RootACL: []ACEConfig{
			{Principal: "guests", Permission: "Write", Deny: true},
			{Principal: "members", Permission: "Read"},
		},
	})
	want := []repository.ACE{
		{Principal: "root", Permission: repository.PermEverything, Granted: true},
		{Principal: "guests", Permission: repository.PermWrite, Granted: false},
		{Principal: "members", Permission: repository.PermRead, Granted: true},
	}
	if len(acl) != len(want) {
		t.Fatalf("Expected %d entries, got %+v", len(want), acl)
	}
	for i := range want {
		if acl[i] != want[i] {
			t.Errorf("acl[%d] = %+v, want %+v", i, acl[i], want[i])
		}
	}
}

func TestCreateRepository_BootstrapAndBackend(t *testing.T) {
	ctx := context.Background()

	for _, repoType := range []string{"memory", "badger"} {
		t.Run(repoType, func(t *testing.T) {
			cfg := GetDefaultConfig()
			cfg.Repository.Type = repoType
			cfg.Repository.Badger["db_path"] = filepath.Join(t.TempDir(), "db")
			cfg.Repository.RootACL = []ACEConfig{{Principal: "alice", Permission: "Everything"}}

			repo, err := CreateRepository(ctx, cfg)
			if err != nil {
				t.Fatalf("CreateRepository failed: %v", err)
			}
			t.Cleanup(func() { _ = repo.Close() })

			if err := BootstrapBackends(ctx, repo, cfg); err != nil {
				t.Fatalf("BootstrapBackends failed: %v", err)
			}
			// bootstrapping twice keeps the existing containers
			if err := BootstrapBackends(ctx, repo, cfg); err != nil {
				t.Fatalf("Second BootstrapBackends failed: %v", err)
			}

			session := repo.Open("alice")
			t.Cleanup(func() { _ = session.Close() })

			root, err := session.Get(ctx, repository.PathRef("/default-domain/workspaces"))
			if err != nil {
				t.Fatalf("Backend root missing: %v", err)
			}
			if root.Type != repository.TypeWorkspaceRoot {
				t.Errorf("Expected WorkspaceRoot, got %s", root.Type)
			}

			backend, err := CreateBackend(session, &cfg.Backends[0], nil)
			if err != nil {
				t.Fatalf("CreateBackend failed: %v", err)
			}
			if _, err := backend.CreateFolder(ctx, "/dav/workspaces", "ws"); err != nil {
				t.Fatalf("CreateFolder failed: %v", err)
			}
			node, err := backend.ResolveLocation(ctx, "/dav/workspaces/ws")
			if err != nil || node == nil {
				t.Fatalf("ResolveLocation = %v, %v", node, err)
			}
			if node.Type != repository.TypeWorkspace {
				t.Errorf("Expected a Workspace under the workspace root, got %s", node.Type)
			}
		})
	}
}

func TestCreateRepository_Errors(t *testing.T) {
	ctx := context.Background()

	cfg := GetDefaultConfig()
	cfg.Repository.Type = "postgres"
	if _, err := CreateRepository(ctx, cfg); err == nil {
		t.Error("Expected error for unknown repository type")
	}

	cfg = GetDefaultConfig()
	cfg.Repository.Type = "badger"
	cfg.Repository.Badger = map[string]any{}
	if _, err := CreateRepository(ctx, cfg); err == nil || !strings.Contains(err.Error(), "db_path is required") {
		t.Errorf("Expected missing db_path error, got %v", err)
	}
}

func TestBootstrapBackends_LeafRoot(t *testing.T) {
	ctx := context.Background()
	cfg := GetDefaultConfig()

	repo, err := CreateRepository(ctx, cfg)
	if err != nil {
		t.Fatalf("CreateRepository failed: %v", err)
	}
	defer func() { _ = repo.Close() }()

	admin := repo.Open(cfg.Repository.AdminUser)
	if _, err := admin.Create(ctx, repository.PathRef("/"), repository.NodeSpec{Name: "doc", Type: repository.TypeFile}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	cfg.Backends[0].RootPath = "/doc"
	if err := BootstrapBackends(ctx, repo, cfg); err == nil {
		t.Fatal("Expected error for a backend rooted at a leaf")
	}
}

func TestInitializeMetrics_Disabled(t *testing.T) {
	cfg := GetDefaultConfig()

	result := InitializeMetrics(cfg)
	if result.Server != nil {
		t.Error("Expected no server when metrics are disabled")
	}
	if result.For("workspaces") == nil || result.For("unknown") == nil {
		t.Error("Expected no-op collectors")
	}
}

func TestInitializeMetrics_Enabled(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Metrics.Enabled = true
	cfg.Metrics.Port = 19090

	result := InitializeMetrics(cfg)
	if result.Server == nil {
		t.Fatal("Expected a metrics server")
	}
	if result.Server.Port() != 19090 {
		t.Errorf("Expected port 19090, got %d", result.Server.Port())
	}
	if _, ok := result.Backends["workspaces"]; !ok {
		t.Error("Expected collectors for the workspaces backend")
	}
}
