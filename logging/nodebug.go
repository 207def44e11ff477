//go:build !debug
// +build !debug

package logging

import "go.uber.org/zap"

// Production logs are JSON encoded: module tags are not coloured.
const colorTags = false

func newConfig() zap.Config { return zap.NewProductionConfig() }
