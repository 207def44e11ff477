//go:build debug
// +build debug

package logging

import "go.uber.org/zap"

const colorTags = true

func newConfig() zap.Config { return zap.NewDevelopmentConfig() }
