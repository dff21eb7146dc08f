package msgcat

import (
    "os"
    "path/filepath"
    "testing"
)

func TestEmbeddedCatalog(t *testing.T) {
    c, err := New("")
    if err != nil { t.Fatalf("New: %v", err) }

    for _, key := range []string{
        "reject.not_your_turn",
        "reject.waiting_for_opponent",
        "reject.no_active_game",
        "reject.illegal_move",
        "reject.game_not_found",
        "reject.bad_payload",
        "gameover.checkmate",
        "gameover.stalemate",
        "gameover.threefold_repetition",
        "gameover.fifty_move_rule",
        "gameover.insufficient_material",
    } {
        if got := c.Get(key); got == key || got == "" {
            t.Fatalf("key %q missing from embedded catalog", key)
        }
    }
}

func TestRenderTemplate(t *testing.T) {
    c, err := New("")
    if err != nil { t.Fatalf("New: %v", err) }

    got, err := c.Render("notice.player_disconnected", map[string]string{"Name": "alice"})
    if err != nil { t.Fatalf("Render: %v", err) }
    if got != "alice disconnected" {
        t.Fatalf("rendered %q", got)
    }

    if _, err := c.Render("notice.player_disconnected", map[string]string{}); err == nil {
        t.Fatalf("expected missing key error")
    }
    if _, err := c.Render("no.such.key", nil); err == nil {
        t.Fatalf("expected unknown key error")
    }
}

func TestOverrideDir(t *testing.T) {
    dir := t.TempDir()
    override := []byte("reject:\n  illegal_move: \"nope\"\n")
    if err := os.WriteFile(filepath.Join(dir, "messages.yaml"), override, 0o644); err != nil {
        t.Fatalf("write override: %v", err)
    }

    c, err := New(dir)
    if err != nil { t.Fatalf("New: %v", err) }
    if got := c.Get("reject.illegal_move"); got != "nope" {
        t.Fatalf("override not applied: %q", got)
    }
    // Untouched keys keep their embedded values.
    if got := c.Get("reject.not_your_turn"); got == "reject.not_your_turn" {
        t.Fatalf("embedded key lost after override")
    }
}
