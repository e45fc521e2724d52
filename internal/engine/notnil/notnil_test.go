package notnil

import (
	"testing"

	"github.com/park285/cheese-board/internal/engine/enginetest"
)

func TestConformance(t *testing.T) {
	enginetest.Run(t, New())
}
