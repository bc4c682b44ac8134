package dashboard

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"farmdash/internal/farm"
	"farmdash/internal/settings"
	"farmdash/internal/table"
	"farmdash/views/components"
	"farmdash/views/models"
	"farmdash/views/pages"

	"go.uber.org/zap"
)

// SettingsStore reads and saves the farm settings: the local service or a
// remote API.
type SettingsStore interface {
	Get(ctx context.Context) (*settings.Settings, error)
	Update(ctx context.Context, p settings.Patch) (*settings.Settings, error)
}

const settingsSaved = "Settings saved successfully."

// SettingsPage handles GET /settings
func (h *Handler) SettingsPage(w http.ResponseWriter, r *http.Request) {
	view := h.settingsView(r.Context())
	h.render(w, r, pages.SettingsPage(view))
}

// SaveSettings handles POST /settings. A rejected form is shown again with
// the submitted values and the reason.
func (h *Handler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	view := h.settingsView(r.Context())
	if view.Failed {
		h.render(w, r, components.SettingsForm(view))
		return
	}

	p, err := settings.ParseForm(r.PostForm)
	if err != nil {
		view.Message, view.Failed = settingsMessage(err), true
		h.render(w, r, components.SettingsForm(view))
		return
	}
	saved, err := h.settings.Update(r.Context(), p)
	if err != nil {
		h.log.Debug("settings rejected", zap.Error(err))
		view.Settings = p.Apply(view.Settings)
		view.Message, view.Failed = settingsMessage(err), true
		h.render(w, r, components.SettingsForm(view))
		return
	}
	view.Settings = *saved
	view.Message = settingsSaved
	h.render(w, r, components.SettingsForm(view))
}

func (h *Handler) settingsView(ctx context.Context) models.SettingsView {
	view := models.SettingsView{Tabs: tabs(farm.Schemas(), "")}
	current, err := h.settings.Get(ctx)
	if err != nil {
		h.log.Warn("failed to load settings", zap.Error(err))
		view.Settings = settings.Default()
		view.Message, view.Failed = "Failed to load settings.", true
		return view
	}
	view.Settings = *current
	return view
}

// settingsMessage picks the banner text: the validation reason, the
// server's message, or a generic fallback.
func settingsMessage(err error) string {
	var ve *table.ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	var re *table.RemoteError
	if errors.As(err, &re) && strings.TrimSpace(re.Message) != "" {
		return re.Message
	}
	return "Failed to save settings."
}
