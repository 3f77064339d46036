package e2e

import (
	"github.com/cucumber/godog"

	"gatepass/e2e/steps/common"
	"gatepass/e2e/steps/pass"
)

// RegisterSteps registers all step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	pass.RegisterSteps(ctx, tc)
}
