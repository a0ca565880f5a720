package model

// Category groups problems. The id is a slug of the display name
// ("Web Exploitation" -> "web-exploitation"); Color is a presentation token.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}
