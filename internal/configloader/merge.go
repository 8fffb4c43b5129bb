package configloader

import "github.com/yaklabco/stylegrade/pkg/config"

// merge combines two configurations, with override taking precedence over base.
// The merge follows these rules:
//   - Scalar values: override overwrites base if override is non-zero
//   - Tools: deep merge by name; unknown names are appended in order
//   - Slices: override replaces base entirely if override is non-nil
//   - Nil/unset values in override do not override values in base
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	result := *base

	if override.Separator != "" {
		result.Separator = override.Separator
	}
	if override.Jobs != 0 {
		result.Jobs = override.Jobs
	}
	if override.Timeout != 0 {
		result.Timeout = override.Timeout
	}
	if override.Format != "" {
		result.Format = override.Format
	}

	// Strict can only be switched on by a higher layer.
	if override.Strict {
		result.Strict = override.Strict
	}

	if override.ParseCheck.Command != "" {
		result.ParseCheck.Command = override.ParseCheck.Command
	}
	if override.ParseCheck.Enabled != nil {
		enabled := *override.ParseCheck.Enabled
		result.ParseCheck.Enabled = &enabled
	}

	result.Tools = mergeTools(base.Tools, override.Tools)

	if override.Ignore != nil {
		result.Ignore = append([]string(nil), override.Ignore...)
	}

	return &result
}

// mergeTools performs a deep merge of tool lists keyed by name.
// Base order is kept; tools only present in override are appended.
func mergeTools(base, override []config.ToolConfig) []config.ToolConfig {
	if base == nil && override == nil {
		return nil
	}

	result := make([]config.ToolConfig, 0, len(base)+len(override))
	index := make(map[string]int, len(base))
	for _, tool := range base {
		index[tool.Name] = len(result)
		result = append(result, tool)
	}

	for _, tool := range override {
		if i, ok := index[tool.Name]; ok {
			result[i] = mergeToolConfig(result[i], tool)
			continue
		}
		index[tool.Name] = len(result)
		result = append(result, tool)
	}

	return result
}

// mergeToolConfig merges individual tool configurations.
// override's values take precedence over base's values.
func mergeToolConfig(base, override config.ToolConfig) config.ToolConfig {
	result := base

	if override.Command != "" {
		result.Command = override.Command
	}
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Class != "" {
		result.Class = override.Class
	}
	if override.Enabled != nil {
		enabled := *override.Enabled
		result.Enabled = &enabled
	}
	if override.ColumnOffset != nil {
		offset := *override.ColumnOffset
		result.ColumnOffset = &offset
	}

	return result
}

// MergeAll merges multiple configurations in order, with later configs taking precedence.
func MergeAll(configs ...*config.Config) *config.Config {
	if len(configs) == 0 {
		return nil
	}

	result := configs[0]
	for i := 1; i < len(configs); i++ {
		result = merge(result, configs[i])
	}
	return result
}
