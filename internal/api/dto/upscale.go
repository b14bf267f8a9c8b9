package dto

// UpscaleRequest represents an upscale request. Scale may be a number or a
// numeric string.
type UpscaleRequest struct {
	ImageURL interface{} `json:"imageUrl" swaggertype:"string"`
	Scale    interface{} `json:"scale,omitempty" swaggertype:"number"`
}

// SourceURL returns the image URL, or "" when it is missing or not a string
func (r UpscaleRequest) SourceURL() string {
	s, _ := r.ImageURL.(string)
	return s
}

// UpscaleMeta describes the applied scale and output dimensions
type UpscaleMeta struct {
	Scale  float64 `json:"scale"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
}

// UpscaleResponse represents a successful upscale
type UpscaleResponse struct {
	Success bool        `json:"success"`
	URL     string      `json:"url"`
	Meta    UpscaleMeta `json:"meta"`
}
