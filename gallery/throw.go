package gallery

import (
	"context"
	"fmt"

	"hatesaway-server/canvas"
	"hatesaway-server/core"

	"github.com/sirupsen/logrus"
)

// ThrowAway exports surface, stores the image as a new drawing by userID and
// clears the surface. Nothing is stored if the export fails.
func (s *Service) ThrowAway(ctx context.Context, surface canvas.Surface, userID string) (core.Drawing, error) {
	image, err := surface.Export()
	if err != nil {
		logrus.WithError(err).Warn("Canvas export failed, drawing not saved")
		return core.Drawing{}, fmt.Errorf("export canvas: %w", err)
	}

	d, err := core.NewDrawing(image, userID, s.now())
	if err != nil {
		return core.Drawing{}, err
	}
	if err := s.SaveDrawing(ctx, d); err != nil {
		return core.Drawing{}, err
	}

	surface.Clear()
	return d, nil
}
