// Package lore navigates the lore tree through callback payloads.
package lore

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mcoot/eventide-gm/internal/media"
	"github.com/mcoot/eventide-gm/internal/messenger"
	"github.com/mcoot/eventide-gm/internal/model"
)

// Payload grammar
const (
	PayloadPrefix   = "lore_"
	MainMenuPayload = "lore_main_menu_trigger"
	PathSeparator   = "_sections_"
)

// User-facing texts
const (
	MenuPrompt        = "Select a section to study:"
	NoSectionsText    = "Lore sections not found or configured incorrectly."
	NavigationErrText = "Error navigating lore data. Please try /lore again."
	IntroductionLabel = "📜 Introduction to Eventide: Eclipse"
	BackLabel         = "⬅️ Back"
	SectionFallback   = "Select a subsection:"
)

// Store is the lore tree owner
type Store interface {
	ViewLore(fn func(lore *model.LoreTree))
	UpdateLore(ctx context.Context, fn func(lore *model.LoreTree) bool) error
}

// View is one rendered lore page
type View struct {
	Path     []string
	Text     string
	Keyboard messenger.InlineKeyboard
	// Photo is set when the page declares an image that can be sent
	Photo *media.Photo
}

// Navigator renders lore pages and caches image uploads
type Navigator struct {
	store   Store
	baseDir string
	logger  *slog.Logger
}

// New creates a navigator. Local image references resolve under baseDir.
func New(store Store, baseDir string, logger *slog.Logger) *Navigator {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Navigator{store: store, baseDir: baseDir, logger: logger}
}

// IsPayload reports whether a callback payload belongs to the navigator
func IsPayload(payload string) bool {
	return strings.HasPrefix(payload, PayloadPrefix)
}

// Unavailable returns the reason lore cannot be shown, if any
func (n *Navigator) Unavailable() (string, bool) {
	var reason string
	n.store.ViewLore(func(lore *model.LoreTree) {
		reason = lore.Unavailable
	})
	return reason, reason != ""
}

// MainMenu lists every titled top-level section and the introduction leaf.
// It is empty when the tree is unavailable or has nothing to show.
func (n *Navigator) MainMenu() messenger.InlineKeyboard {
	var kb messenger.InlineKeyboard
	n.store.ViewLore(func(lore *model.LoreTree) {
		if lore.Unavailable != "" {
			return
		}
		lore.Nodes.Each(func(key string, node *model.LoreNode) bool {
			switch {
			case node == nil:
			case node.Kind == model.LoreSection && node.Title != "":
				kb = append(kb, []messenger.Button{{Label: node.Title, Payload: truncate(PayloadPrefix + key)}})
			case node.Kind == model.LoreLeaf && key == model.LoreIntroductionKey:
				kb = append(kb, []messenger.Button{{Label: IntroductionLabel, Payload: truncate(PayloadPrefix + key)}})
			}
			return true
		})
	})
	return kb
}

// ParsePath splits a lore payload into its key path
func ParsePath(payload string) ([]string, error) {
	if !IsPayload(payload) || payload == MainMenuPayload {
		return nil, model.ErrBadPayload
	}
	return strings.Split(strings.TrimPrefix(payload, PayloadPrefix), PathSeparator), nil
}

// PathPayload is the payload addressing path
func PathPayload(path []string) string {
	return PayloadPrefix + strings.Join(path, PathSeparator)
}

// Open renders the page addressed by payload. A path that does not resolve
// yields model.ErrLoreNavigation and nothing is rendered.
func (n *Navigator) Open(payload string) (*View, error) {
	path, err := ParsePath(payload)
	if err != nil {
		return nil, errors.Join(model.ErrLoreNavigation, err)
	}

	var view *View
	n.store.ViewLore(func(lore *model.LoreTree) {
		if lore.Unavailable != "" {
			err = model.ErrLoreUnavailable
			return
		}
		node, ok := walk(lore, path)
		if !ok {
			n.logger.Warn("lore path not found", slog.String("payload", payload))
			err = model.ErrLoreNavigation
			return
		}
		view = n.render(lore, path, node)
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// walk follows path from the root, descending into sections between keys
func walk(lore *model.LoreTree, path []string) (*model.LoreNode, bool) {
	level := lore.Nodes
	var node *model.LoreNode
	for i, key := range path {
		next, ok := level.Get(key)
		if !ok || !next.Visible() {
			return nil, false
		}
		node = next
		if i == len(path)-1 {
			break
		}
		if !node.HasChildren() {
			return nil, false
		}
		level = node.Sections
	}
	return node, node != nil
}

func (n *Navigator) render(lore *model.LoreTree, path []string, node *model.LoreNode) *View {
	back := MainMenuPayload
	if len(path) > 1 {
		back = PathPayload(path[:len(path)-1])
	}
	view := &View{
		Path:     append([]string(nil), path...),
		Keyboard: messenger.InlineKeyboard{{{Label: BackLabel, Payload: back}}},
	}

	var fileID, ref string
	switch node.Kind {
	case model.LoreLeaf:
		view.Text = node.Prose
		if len(path) == 1 && path[0] == model.LoreIntroductionKey {
			fileID, ref = lore.ImageFileID, lore.ImageURL
		}
	case model.LoreSection:
		view.Text = firstNonEmpty(node.Description, node.Text, node.Title, SectionFallback)
		fileID, ref = node.ImageFileID, node.ImageURL
		if node.HasChildren() {
			current := PathPayload(path)
			node.Sections.Each(func(key string, child *model.LoreNode) bool {
				if !child.Visible() {
					return true
				}
				view.Keyboard = append(view.Keyboard, []messenger.Button{{
					Label:   childTitle(key, child),
					Payload: truncate(current + PathSeparator + key),
				}})
				return true
			})
		}
	}
	view.Text = strings.NewReplacer("<br><br>", "\n\n", "<br>", "\n").Replace(view.Text)

	if photo, ok := media.Resolve(n.baseDir, fileID, ref); ok {
		view.Photo = &photo
	}
	return view
}

// CacheImage records the handle returned by the first upload of the page's
// image and persists the lore document. Pages that already carry a handle
// are left alone.
func (n *Navigator) CacheImage(ctx context.Context, path []string, fileID string) error {
	return n.store.UpdateLore(ctx, func(lore *model.LoreTree) bool {
		node, ok := walk(lore, path)
		if !ok {
			return false
		}
		if node.Kind == model.LoreLeaf {
			if len(path) != 1 || path[0] != model.LoreIntroductionKey || lore.ImageFileID != "" {
				return false
			}
			lore.ImageFileID = fileID
		} else {
			if node.ImageFileID != "" {
				return false
			}
			node.ImageFileID = fileID
		}
		n.logger.Info("cached lore image handle", slog.String("path", PathPayload(path)))
		return true
	})
}

func childTitle(key string, child *model.LoreNode) string {
	if child != nil && child.Kind == model.LoreSection && child.Title != "" {
		return child.Title
	}
	return capitalize(strings.ReplaceAll(key, "_", " "))
}

// capitalize upper-cases the first letter and lower-cases the rest
func capitalize(s string) string {
	if s == "" {
		return s
	}
	first := []rune(s)[:1]
	rest := string([]rune(s)[1:])
	return cases.Upper(language.Und).String(string(first)) + cases.Lower(language.Und).String(rest)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func truncate(payload string) string {
	return messenger.TruncatePayload(payload)
}
