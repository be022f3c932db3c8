// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package tabstate

import (
	"image"

	"github.com/SomethingNew71/UltraLog/internal/downsample"
)

// Interfaces the core consumes from the presentation layer. The
// implementations (native dialogs, the chart renderer) live outside
// the core and are injected by the application shell.

// FileDialogs wraps the platform file pickers. The boolean is false
// when the user dismissed the dialog.
type FileDialogs interface {
	OpenFileDialog() (string, bool)
	SaveImageDialog(suggestedName string) (string, bool)
}

// FrameRenderer draws one frame of the given series for PNG/PDF
// export. Series arrive in display units, already downsampled.
type FrameRenderer interface {
	RenderFrame(viewport downsample.Viewport, series []downsample.Series) *image.RGBA
}
