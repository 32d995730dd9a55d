package analyzer

import "github.com/dharts/tesskit/engine"

// PageOption configures one analyzer, scoped to the image it analyzes.
type PageOption func(*pageConfig)

type pageConfig struct {
	psm        engine.PageSegMode
	psmSet     bool
	resolution int
	vars       map[string]string
	configs    []string
}

// WithPageSegMode overrides the factory's segmentation mode for this image.
func WithPageSegMode(mode engine.PageSegMode) PageOption {
	return func(c *pageConfig) {
		c.psm = mode
		c.psmSet = true
	}
}

// WithSourceResolution declares the scan resolution of the image in pixels
// per inch.
func WithSourceResolution(ppi int) PageOption {
	return func(c *pageConfig) { c.resolution = ppi }
}

// WithVariable sets one engine parameter for this image.
func WithVariable(name, value string) PageOption {
	return func(c *pageConfig) {
		if c.vars == nil {
			c.vars = make(map[string]string)
		}
		c.vars[name] = value
	}
}

// WithVariables sets several engine parameters for this image.
func WithVariables(vars map[string]string) PageOption {
	return func(c *pageConfig) {
		if c.vars == nil {
			c.vars = make(map[string]string, len(vars))
		}
		for k, v := range vars {
			c.vars[k] = v
		}
	}
}

// WithConfigFile loads a name/value parameter file for this image.
func WithConfigFile(path string) PageOption {
	return func(c *pageConfig) { c.configs = append(c.configs, path) }
}
