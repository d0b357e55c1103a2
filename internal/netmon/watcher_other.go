//go:build !linux && !darwin

package netmon

import "github.com/dmdmdm-nz/connmon/internal/connectivity"

const nativeKind = ""

func newNativeSource() connectivity.Source { return nil }
