// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	vk "github.com/devblok/vulkan"
	"github.com/devblok/vkboot/core"
	"github.com/sirupsen/logrus"
)

const debugReportExtension = "VK_EXT_debug_report"

func applicationInfo(name string) *vk.ApplicationInfo {
	return &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         vk.MakeVersion(1, 0, 0),
		ApplicationVersion: vk.MakeVersion(1, 0, 0),
		PApplicationName:   safeString(name),
		PEngineName:        "Koru3D\x00",
	}
}

// instanceExtensions merges what the window needs with the configured
// extensions, adding debug report in debug mode. Duplicates are dropped.
func instanceExtensions(window []string, cfg core.InstanceConfiguration) []string {
	exts := append(append([]string{}, window...), cfg.Extensions...)
	if cfg.DebugMode {
		exts = append(exts, debugReportExtension)
	}
	return unique(exts)
}

// availableLayers keeps the requested layers the loader knows about and
// warns about the rest.
func availableLayers(available, requested []string, log logrus.FieldLogger) []string {
	have := make(map[string]struct{}, len(available))
	for _, layer := range available {
		have[layer] = struct{}{}
	}

	var layers []string
	for _, layer := range requested {
		if _, ok := have[layer]; !ok {
			log.WithField("layer", layer).Warn("Validation layer not available, skipping")
			continue
		}
		layers = append(layers, layer)
	}
	return layers
}

func debugReportFlags(cfg core.DebugReportConfiguration) vk.DebugReportFlags {
	var flags vk.DebugReportFlagBits
	if cfg.Information {
		flags |= vk.DebugReportInformationBit
	}
	if cfg.Warning {
		flags |= vk.DebugReportWarningBit
	}
	if cfg.PerformanceWarning {
		flags |= vk.DebugReportPerformanceWarningBit
	}
	if cfg.Error {
		flags |= vk.DebugReportErrorBit
	}
	if cfg.Debug {
		flags |= vk.DebugReportDebugBit
	}
	return vk.DebugReportFlags(flags)
}

// debugReporter routes validation messages to log by severity.
func debugReporter(log logrus.FieldLogger) DebugFunc {
	return func(flags vk.DebugReportFlags, layerPrefix, message string) {
		entry := log.WithField("layer", layerPrefix)
		switch {
		case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
			entry.Error(message)
		case flags&vk.DebugReportFlags(vk.DebugReportWarningBit|vk.DebugReportPerformanceWarningBit) != 0:
			entry.Warn(message)
		case flags&vk.DebugReportFlags(vk.DebugReportInformationBit) != 0:
			entry.Info(message)
		default:
			entry.Debug(message)
		}
	}
}

func unique(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := items[:0]
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
