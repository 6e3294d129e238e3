package session

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/hyprspaces/hyprspaces/internal/dispatch"
	"github.com/hyprspaces/hyprspaces/internal/paired"
	"github.com/hyprspaces/hyprspaces/internal/state"
)

// RestoreMode picks the restore strategy.
type RestoreMode int

const (
	// Auto uses Same when the snapshot came from the running instance.
	Auto RestoreMode = iota
	// Same matches windows by address.
	Same
	// Cold matches windows by identity attributes.
	Cold
)

func (m RestoreMode) String() string {
	switch m {
	case Same:
		return "same"
	case Cold:
		return "cold"
	default:
		return "auto"
	}
}

// ParseRestoreMode accepts auto, same or cold.
func ParseRestoreMode(s string) (RestoreMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return Auto, nil
	case "same":
		return Same, nil
	case "cold":
		return Cold, nil
	default:
		return Auto, fmt.Errorf("unknown restore mode %q (want auto, same or cold)", s)
	}
}

// ResolveMode turns Auto into Same or Cold. Same requires a recorded
// signature equal to the current one.
func ResolveMode(mode RestoreMode, snapshotSig, currentSig string) RestoreMode {
	if mode != Auto {
		return mode
	}
	if snapshotSig != "" && snapshotSig == currentSig {
		return Same
	}
	return Cold
}

// minMatchScore is the lowest score accepted in a cold restore; it equals
// an app id match on its own.
const minMatchScore = 4

// MatchScore weighs identity attributes shared by a snapshot entry and a
// live window: app id 4, class 3, initial class 2, title 1.
func MatchScore(snap SnapshotClient, live state.Client) int {
	score := 0
	if sameValue(snap.AppID, live.AppID) {
		score += 4
	}
	if sameValue(snap.Class, live.Class) {
		score += 3
	}
	if sameValue(snap.InitialClass, live.InitialClass) {
		score += 2
	}
	if sameValue(snap.Title, live.Title) {
		score += 1
	}
	return score
}

func sameValue(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	return a != "" && b != "" && a == b
}

// RestoreBatch computes the silent moves that put live windows back where
// snap recorded them. An empty batch means nothing needs to move.
func RestoreBatch(snap Snapshot, mode RestoreMode, currentSig string, live []state.Client, offset int) dispatch.Batch {
	switch ResolveMode(mode, snap.Signature, currentSig) {
	case Same:
		return restoreSame(snap, live)
	default:
		return restoreCold(snap, live, offset)
	}
}

func restoreSame(snap Snapshot, live []state.Client) dispatch.Batch {
	var b dispatch.Batch
	for _, rec := range snap.Clients {
		cur, ok := state.FindClient(live, rec.Address)
		if !ok || placedAt(rec, cur) {
			continue
		}
		b.Append(dispatch.MoveToWorkspaceSilent(rec.target(), rec.Address))
	}
	return b
}

func placedAt(rec SnapshotClient, cur state.Client) bool {
	if rec.onSpecialWorkspace() {
		return rec.WorkspaceName == cur.WorkspaceName
	}
	return rec.WorkspaceID == cur.WorkspaceID
}

// restoreCold greedily assigns each live window, in address order, the
// unused snapshot entry with an unambiguous best score. Unmatched windows on
// ordinary workspaces fall back to their paired slot.
func restoreCold(snap Snapshot, live []state.Client, offset int) dispatch.Batch {
	ordered := slices.Clone(live)
	slices.SortStableFunc(ordered, func(a, b state.Client) int {
		return strings.Compare(a.Address, b.Address)
	})

	var b dispatch.Batch
	used := make(map[int]bool)
	matched := make(map[string]bool)
	for _, cur := range ordered {
		best, bestScore, second := -1, 0, 0
		for idx, rec := range snap.Clients {
			if used[idx] {
				continue
			}
			score := MatchScore(rec, cur)
			if score == 0 {
				continue
			}
			switch {
			case best < 0:
				best, bestScore = idx, score
			case score > bestScore:
				second = max(second, bestScore)
				best, bestScore = idx, score
			case score == bestScore:
				second = bestScore
			case score > second:
				second = score
			}
		}
		if best < 0 || bestScore < minMatchScore || bestScore <= second {
			continue
		}
		used[best] = true
		matched[cur.Address] = true
		rec := snap.Clients[best]
		if cur.WorkspaceID != rec.WorkspaceID {
			b.Append(dispatch.MoveToWorkspaceSilent(rec.target(), cur.Address))
		}
	}

	for _, cur := range ordered {
		if matched[cur.Address] || cur.OnSpecialWorkspace() {
			continue
		}
		if slot := paired.Normalize(cur.WorkspaceID, offset); slot != cur.WorkspaceID {
			b.Append(dispatch.MoveToWorkspaceSilent(strconv.Itoa(slot), cur.Address))
		}
	}
	return b
}
