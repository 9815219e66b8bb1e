package analysis

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/qolstats-cli/internal/observability"
)

const stateCSV = `state,QualityOfLifeTotalScore,QualityOfLifeAffordability,QualityOfLifeEconomy,QualityOfLifeEducationAndHealth,QualityOfLifeSafety,HappiestStatesTotalHappinessScore
California,60,20,30,40,50,55.5
Texas,50,40,35,30,20,50.0
Nevada,40,30,20,10,30,45.0
Vermont,70,25,25,50,60,60.0
`

// Expected values are worked out by hand in the tests that use them.
// Echo has an unparseable population and is dropped; Foxtrot's empty
// unemployment is filled with the mean of the six present cells (0.05).
const countyCSV = `County,LSTATE,2022 Population,Unemployment,Cost of Living,2022 Median Income,WaterQualityVPV,%CvgCityPark,2016 Crime Rate
Alpha,CA,"1,000",5.0%,"$2,000","$80,000",0.5,40%,300
Beta,CA,"3,000",3.0%,"$3,000",-1,-1,1/2,200
Gamma,TX,"2,000",4.0%,"$1,500","$60,000",-1,-1,abc
Delta,NV,500,10.0%,,"$50,000",0.2,20%,-1
Echo,WY,unknown,2.0%,,,,,
Foxtrot,VT,800,,"$1,000",,,,
Golf,ND,0,6.0%,,,,,
`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testOptions(m *observability.Metrics) LoadOptions {
	opt := DefaultLoadOptions()
	opt.Logger = quietLogger()
	opt.Metrics = m
	return opt
}

func newTestDataset(t *testing.T, states, counties string, m *observability.Metrics) *Dataset {
	t.Helper()
	st, err := ParseTable("states.csv", strings.NewReader(states), ',')
	require.NoError(t, err)
	ct, err := ParseTable("counties.csv", strings.NewReader(counties), ',')
	require.NoError(t, err)
	ds, err := NewDataset(st, ct, testOptions(m))
	require.NoError(t, err)
	return ds
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(NewEngine(newTestDataset(t, stateCSV, countyCSV, nil)))
}
