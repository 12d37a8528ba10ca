package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"encore.app/analysis/mocks/business/run_business"
	"encore.app/analysis/model"
)

func TestGetLoad(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockBusiness := run_business.NewMockBusiness(ctrl)
	service := &Service{business: mockBusiness}

	snap := model.LoadSnapshot{
		InFlight:          3,
		QueuedInteractive: 1,
		QueuedBatch:       7,
		Capacity:          8,
		EffectiveCapacity: 4,
		Degraded:          true,
		ErrorRate:         0.625,
		TotalAdmitted:     120,
		TotalCompleted:    110,
		TotalFailed:       40,
		TotalRejected:     9,
	}
	mockBusiness.EXPECT().Load(gomock.Any()).Return(snap).Times(1)

	response, err := service.GetLoad(context.Background())
	require.NoError(t, err)
	assert.Equal(t, snap, response.Load)
}
