//go:build tools
// +build tools

package tools

import (
    _ "github.com/charmbracelet/lipgloss"
    _ "github.com/go-viper/mapstructure/v2"
    _ "github.com/google/uuid"
    _ "github.com/spf13/cobra"
    _ "github.com/spf13/viper"
)
