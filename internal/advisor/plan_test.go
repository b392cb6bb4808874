package advisor

import (
	"testing"

	"finnow/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackPlanHighRisk(t *testing.T) {
	plan := fallbackPlan(100000, models.RiskHigh)

	require.Len(t, plan.Instruments, 3)
	assert.Equal(t, 50, plan.Instruments[0].Allocation)
	assert.Equal(t, 30, plan.Instruments[1].Allocation)
	assert.Equal(t, 20, plan.Instruments[2].Allocation)
	assert.Equal(t, int64(50000), plan.Instruments[0].Amount)
	assert.Equal(t, int64(30000), plan.Instruments[1].Amount)
	assert.Equal(t, int64(20000), plan.Instruments[2].Amount)
	assert.Equal(t, 28.0, plan.ExpectedYield)
	assert.Equal(t, "6-12 месяцев", plan.Timeframe)
}

func TestFallbackPlansAllocationsSumTo100(t *testing.T) {
	for _, risk := range []models.RiskLevel{models.RiskLow, models.RiskMedium, models.RiskHigh} {
		plan := fallbackPlan(500000, risk)
		sum := 0
		for _, inst := range plan.Instruments {
			sum += inst.Allocation
			assert.Equal(t, risk, inst.RiskLevel)
		}
		assert.Equal(t, 100, sum, string(risk))
	}
}

func TestFallbackPlanAmountsFloor(t *testing.T) {
	// 333*70/100 = 233.1 must floor to 233.
	plan := fallbackPlan(333, models.RiskLow)
	assert.Equal(t, int64(233), plan.Instruments[0].Amount)
	assert.Equal(t, int64(83), plan.Instruments[1].Amount)
	assert.Equal(t, int64(16), plan.Instruments[2].Amount)
}

func TestGeneratePlanDisabledUsesFallback(t *testing.T) {
	a := newDisabledAdvisor(t)

	plan := a.GeneratePlan(testAdvisorContext(t), 100000, models.RiskHigh)
	require.Len(t, plan.Instruments, 3)
	assert.Equal(t, int64(50000), plan.Instruments[0].Amount)
}

func TestGeneratePlanInvalidRiskDefaultsToMedium(t *testing.T) {
	a := newDisabledAdvisor(t)

	plan := a.GeneratePlan(testAdvisorContext(t), 100000, models.RiskLevel("yolo"))
	require.Len(t, plan.Instruments, 3)
	assert.Equal(t, 45, plan.Instruments[0].Allocation)
	assert.Equal(t, "1-2 года", plan.Timeframe)
}

const validPlanJSON = `{
	"instruments": [
		{"name": "ОФЗ 26238", "type": "Облигации", "allocation": 60, "expectedYield": 13.5, "description": "ОФЗ"},
		{"name": "Акции ММВБ", "type": "Акции", "allocation": 40, "expectedYield": 18.0, "description": "Акции"}
	],
	"expectedYield": 15.3,
	"timeframe": "1-2 года",
	"aiReasoning": "Сбалансированный выбор."
}`

func TestParsePlanValid(t *testing.T) {
	plan, err := parsePlan(validPlanJSON, 100000, models.RiskMedium)
	require.NoError(t, err)

	require.Len(t, plan.Instruments, 2)
	assert.Equal(t, "ОФЗ 26238", plan.Instruments[0].Name)
	assert.Equal(t, int64(60000), plan.Instruments[0].Amount)
	assert.Equal(t, int64(40000), plan.Instruments[1].Amount)
	assert.Equal(t, models.RiskMedium, plan.Instruments[0].RiskLevel)
	assert.Equal(t, 15.3, plan.ExpectedYield)
	assert.Equal(t, "1-2 года", plan.Timeframe)
	assert.Equal(t, "Сбалансированный выбор.", plan.Reasoning)
}

func TestParsePlanStripsMarkdownFences(t *testing.T) {
	content := "Вот ваш план:\n```json\n" + validPlanJSON + "\n```\nУдачи!"
	plan, err := parsePlan(content, 100000, models.RiskMedium)
	require.NoError(t, err)
	assert.Len(t, plan.Instruments, 2)
}

func TestParsePlanRejects(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"no json object", "извините, не могу"},
		{"broken json", `{"instruments": [}`},
		{"empty instruments", `{"instruments": [], "expectedYield": 10, "timeframe": "1 год"}`},
		{"missing timeframe", `{"instruments": [{"name": "ОФЗ", "allocation": 100, "expectedYield": 13}], "expectedYield": 13}`},
		{"sum below 100", `{"instruments": [{"name": "ОФЗ", "allocation": 60, "expectedYield": 13}], "expectedYield": 13, "timeframe": "1 год"}`},
		{"sum above 100", `{"instruments": [{"name": "ОФЗ", "allocation": 60, "expectedYield": 13}, {"name": "Акции", "allocation": 60, "expectedYield": 18}], "expectedYield": 15, "timeframe": "1 год"}`},
		{"negative allocation", `{"instruments": [{"name": "ОФЗ", "allocation": -10, "expectedYield": 13}, {"name": "Акции", "allocation": 110, "expectedYield": 18}], "expectedYield": 15, "timeframe": "1 год"}`},
		{"fractional allocation", `{"instruments": [{"name": "ОФЗ", "allocation": 50.5, "expectedYield": 13}, {"name": "Акции", "allocation": 49.5, "expectedYield": 18}], "expectedYield": 15, "timeframe": "1 год"}`},
		{"unnamed instrument", `{"instruments": [{"name": "", "allocation": 100, "expectedYield": 13}], "expectedYield": 13, "timeframe": "1 год"}`},
		{"negative yield", `{"instruments": [{"name": "ОФЗ", "allocation": 100, "expectedYield": -1}], "expectedYield": 13, "timeframe": "1 год"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parsePlan(tc.content, 100000, models.RiskMedium)
			assert.Error(t, err)
		})
	}
}
