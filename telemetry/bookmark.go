package telemetry

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/exertion/config"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkSurge     BookmarkType = "surge"
	BookmarkSettled   BookmarkType = "settled"
	BookmarkSaturated BookmarkType = "saturated"
)

// minSurgeHistory is the number of windows needed before surges are reported.
const minSurgeHistory = 3

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int32        `csv:"tick"`
	Mode        string       `csv:"mode"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"mode", b.Mode,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in the particle motion.
type BookmarkDetector struct {
	thresholds config.BookmarksConfig

	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	moving    bool // mean speed has been above the settled threshold since the last settle
	saturated bool // saturation already reported for the current episode
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int, thresholds config.BookmarksConfig) *BookmarkDetector {
	if historySize < minSurgeHistory {
		historySize = minSurgeHistory
	}
	return &BookmarkDetector{
		thresholds:  thresholds,
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkSurge(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkSettled(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkSaturated(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

// checkSurge fires when mean speed exceeds the rolling mean by the surge multiplier.
func (bd *BookmarkDetector) checkSurge(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < minSurgeHistory {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.SpeedMean
	}
	avg := total / float64(len(history))
	if avg == 0 {
		return nil
	}

	if stats.SpeedMean > avg*bd.thresholds.SurgeMultiplier && stats.SpeedMean > bd.thresholds.SurgeMinSpeed {
		return &Bookmark{
			Type:        BookmarkSurge,
			Tick:        stats.WindowEndTick,
			Mode:        stats.Mode,
			Description: fmt.Sprintf("Mean speed %.2f is %.1fx average (%.2f)", stats.SpeedMean, stats.SpeedMean/avg, avg),
		}
	}
	return nil
}

// checkSettled fires once each time the cloud comes to rest after moving.
func (bd *BookmarkDetector) checkSettled(stats WindowStats) *Bookmark {
	if stats.SpeedMean > bd.thresholds.SettledSpeed {
		bd.moving = true
		return nil
	}
	if !bd.moving {
		return nil
	}
	bd.moving = false

	return &Bookmark{
		Type:        BookmarkSettled,
		Tick:        stats.WindowEndTick,
		Mode:        stats.Mode,
		Description: fmt.Sprintf("Mean speed fell to %.3f with %d exertors", stats.SpeedMean, stats.Exertors),
	}
}

// checkSaturated fires once when the 90th percentile speed reaches max velocity,
// i.e. at least a tenth of the particles are drawn fully hot.
func (bd *BookmarkDetector) checkSaturated(stats WindowStats) *Bookmark {
	if stats.MaxVelocity <= 0 || stats.SpeedP90 < stats.MaxVelocity {
		bd.saturated = false
		return nil
	}
	if bd.saturated {
		return nil
	}
	bd.saturated = true

	return &Bookmark{
		Type:        BookmarkSaturated,
		Tick:        stats.WindowEndTick,
		Mode:        stats.Mode,
		Description: fmt.Sprintf("%.0f%% of particles at max velocity %.1f", stats.HotFraction*100, stats.MaxVelocity),
	}
}
