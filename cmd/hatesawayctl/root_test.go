package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"hatesaway-server/core"
	"hatesaway-server/gallery"
	"hatesaway-server/stores/memory"
)

func run(t *testing.T, svc *gallery.Service, args ...string) (string, error) {
	t.Helper()
	open := func(string) (*gallery.Service, func(), error) { return svc, func() {}, nil }
	cmd, release := newRootCmd(open)
	defer release()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func seeded(t *testing.T) *gallery.Service {
	t.Helper()
	svc := gallery.NewService(memory.NewKVStore())
	ctx := context.Background()
	for _, id := range []string{"d1", "d2"} {
		if err := svc.SaveDrawing(ctx, core.Drawing{ID: id, ImageURL: "data:image/png;base64,AAAA", UserID: "00000001-x", CreatedAt: 1000}); err != nil {
			t.Fatal(err)
		}
	}
	return svc
}

func TestList(t *testing.T) {
	out, err := run(t, seeded(t), "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, "d1") || !strings.Contains(out, "Anonymous #00001") {
		t.Errorf("list output missing rows:\n%s", out)
	}
	if strings.Index(out, "d2") > strings.Index(out, "d1") {
		t.Errorf("list is not newest first:\n%s", out)
	}
}

func TestShow_NotFound(t *testing.T) {
	if _, err := run(t, seeded(t), "show", "nope"); err == nil {
		t.Error("show of a missing drawing should fail")
	}
}

func TestLikeAndSweep(t *testing.T) {
	svc := seeded(t)

	out, err := run(t, svc, "like", "d1", "u1")
	if err != nil || !strings.Contains(out, "liked, 1 likes") {
		t.Fatalf("like = %q, %v", out, err)
	}

	if _, err := run(t, svc, "delete", "d1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	out, err = run(t, svc, "sweep")
	if err != nil || !strings.Contains(out, "removed 1 likes, 0 comments") {
		t.Errorf("sweep = %q, %v", out, err)
	}
}

func TestName(t *testing.T) {
	opened := false
	cmd, _ := newRootCmd(func(string) (*gallery.Service, func(), error) {
		opened = true
		return nil, nil, nil
	})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"name", ""})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("name failed: %v", err)
	}
	if strings.TrimSpace(out.String()) != "Anonymous #00000" {
		t.Errorf("name output = %q", out.String())
	}
	if opened {
		t.Error("name should not open storage")
	}
}

func TestClear_RequiresConfirmation(t *testing.T) {
	svc := seeded(t)

	if _, err := run(t, svc, "clear"); err == nil {
		t.Error("clear without --yes should fail")
	}
	if _, err := run(t, svc, "clear", "--yes"); err != nil {
		t.Fatalf("clear --yes failed: %v", err)
	}
	if all, _ := svc.GetDrawings(context.Background()); len(all) != 0 {
		t.Errorf("%d drawings left after clear", len(all))
	}
}

func TestRelease_AfterFailingCommand(t *testing.T) {
	released := 0
	cmd, release := newRootCmd(func(string) (*gallery.Service, func(), error) {
		return seeded(t), func() { released++ }, nil
	})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"show", "nope"})

	if err := cmd.Execute(); err == nil {
		t.Fatal("show of a missing drawing should fail")
	}
	release()
	release()

	if released != 1 {
		t.Errorf("store released %d times, want 1", released)
	}
}
