package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Get returns the display value of key.
func (c *Global) Get(key string) (string, error) {
	switch key {
	case "data_dir":
		return c.DataDir, nil
	case "significance_threshold":
		return strconv.FormatFloat(c.SignificanceThreshold, 'g', -1, 64), nil
	case "min_column_score":
		return strconv.FormatFloat(c.MinColumnScore, 'g', -1, 64), nil
	case "sample_size":
		return strconv.Itoa(c.SampleSize), nil
	case "mirror_edges":
		return strconv.FormatBool(c.MirrorEdges), nil
	case "seed":
		return strconv.FormatUint(c.Seed, 10), nil
	case "decimal_separator":
		return c.DecimalSeparator, nil
	case "thousands_separator":
		return c.ThousandsSeparator, nil
	case "listen_addr":
		return c.ListenAddr, nil
	case "allowed_origins":
		return strings.Join(c.AllowedOrigins, ","), nil
	case "max_upload_mb":
		return strconv.Itoa(c.MaxUploadMB), nil
	case "preview_rows":
		return strconv.Itoa(c.PreviewRows), nil
	case "log_level":
		return c.LogLevel, nil
	case "log_format":
		return c.LogFormat, nil
	default:
		return "", fmt.Errorf("unknown key: %s", key)
	}
}

// Set parses val into key and re-validates the configuration.
// On failure c is left unchanged.
func (c *Global) Set(key, val string) error {
	next := *c
	next.AllowedOrigins = append([]string(nil), c.AllowedOrigins...)
	switch key {
	case "data_dir":
		next.DataDir = val
	case "significance_threshold":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("invalid float for significance_threshold: %w", err)
		}
		next.SignificanceThreshold = f
	case "min_column_score":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("invalid float for min_column_score: %w", err)
		}
		next.MinColumnScore = f
	case "sample_size":
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid int for sample_size: %w", err)
		}
		next.SampleSize = i
	case "mirror_edges":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for mirror_edges: %w", err)
		}
		next.MirrorEdges = b
	case "seed":
		u, err := strconv.ParseUint(val, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid seed: %w", err)
		}
		next.Seed = u
	case "decimal_separator":
		next.DecimalSeparator = separator(val)
	case "thousands_separator":
		next.ThousandsSeparator = separator(val)
	case "listen_addr":
		next.ListenAddr = val
	case "allowed_origins":
		var origins []string
		for _, o := range strings.Split(val, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		next.AllowedOrigins = origins
	case "max_upload_mb":
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid int for max_upload_mb: %w", err)
		}
		next.MaxUploadMB = i
	case "preview_rows":
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid int for preview_rows: %w", err)
		}
		next.PreviewRows = i
	case "log_level":
		next.LogLevel = strings.ToLower(val)
	case "log_format":
		next.LogFormat = strings.ToLower(val)
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

// separator accepts the spelled-out names used on the command line.
func separator(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "comma":
		return ","
	case "dot":
		return "."
	case "space":
		return " "
	case "auto", "":
		return ""
	default:
		return v
	}
}
