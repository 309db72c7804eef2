package web

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

const flashCookie = "finid_flash"

// Flash levels
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-shot message shown on the next page render
type Flash struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

// AddFlash queues a message for the next page
func AddFlash(c *gin.Context, level, text string) {
	pending := readFlashes(c)
	pending = append(pending, Flash{Level: level, Text: text})

	raw, err := json.Marshal(pending)
	if err != nil {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookie, base64.RawURLEncoding.EncodeToString(raw), 0, "/", "", false, true)
}

// TakeFlashes returns the queued messages and clears them
func TakeFlashes(c *gin.Context) []Flash {
	pending := readFlashes(c)
	if len(pending) > 0 {
		c.SetCookie(flashCookie, "", -1, "/", "", false, true)
	}
	return pending
}

func readFlashes(c *gin.Context) []Flash {
	value, err := c.Cookie(flashCookie)
	if err != nil || value == "" {
		return nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil
	}
	var out []Flash
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
