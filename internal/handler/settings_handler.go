package handler

import (
	"net/http"

	"github.com/carelog/internal/service"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const sessionKeyFontScale = "font_scale"

type settingsPayload struct {
	DisplayName      string `json:"display_name"`
	DefaultFontScale string `json:"default_font_scale"`
}

// GetSettings returns the stored preferences plus the font scale effective
// for this browser session.
func (a *API) GetSettings(c *gin.Context) {
	settings, err := a.settings.GetSettings()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "could not load settings")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"display_name":       settings.DisplayName,
		"default_font_scale": settings.DefaultFontScale,
		"font_scale":         a.sessionFontScale(c, settings),
	})
}

// UpdateSettings stores the display name and default font scale.
func (a *API) UpdateSettings(c *gin.Context) {
	var payload settingsPayload
	if !bindJSON(c, &payload, "invalid request body") {
		return
	}

	settings, err := a.settings.UpdateSettings(service.UserSettingsInput{
		DisplayName:      payload.DisplayName,
		DefaultFontScale: payload.DefaultFontScale,
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "could not save settings")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"display_name":       settings.DisplayName,
		"default_font_scale": settings.DefaultFontScale,
	})
}

// CycleFontScale advances this browser's font scale one step
// (normal -> large -> extra-large -> normal) and remembers it in the
// session. Display only; nothing else keys off it.
func (a *API) CycleFontScale(c *gin.Context) {
	settings, err := a.settings.GetSettings()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "could not load settings")
		return
	}

	next := service.NextFontScale(a.sessionFontScale(c, settings))

	session := sessions.Default(c)
	session.Set(sessionKeyFontScale, next)
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, "could not save preference")
		return
	}

	c.JSON(http.StatusOK, gin.H{"font_scale": next})
}

// ResetFontScale drops the session override so the stored default applies
// again.
func (a *API) ResetFontScale(c *gin.Context) {
	settings, err := a.settings.GetSettings()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "could not load settings")
		return
	}

	session := sessions.Default(c)
	session.Delete(sessionKeyFontScale)
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, "could not save preference")
		return
	}

	c.JSON(http.StatusOK, gin.H{"font_scale": settings.DefaultFontScale})
}

func (a *API) sessionFontScale(c *gin.Context, settings service.UserSettings) string {
	session := sessions.Default(c)
	if value, ok := session.Get(sessionKeyFontScale).(string); ok && value != "" {
		return service.NormalizeFontScale(value)
	}
	return settings.DefaultFontScale
}
