package pass

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"strings"

	"github.com/cucumber/godog"
	"github.com/ethereum/go-ethereum/common"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	Do(method, path, as string, body any) error
	GET(path string) error
	POST(path string, body any) error
	GetResponseField(field string) (any, error)
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	Account(name string) common.Address
	SavePass(name string, passID uint64)
	Pass(name string) (uint64, error)
	AdminTransferredTo(name string)
}

// RegisterSteps registers pass issuance, configuration, and treasury steps
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &passSteps{tc: tc}

	// Payment setup
	ctx.Step(`^"([^"]*)" has been funded with "(\d+)"$`, steps.fund)
	ctx.Step(`^"([^"]*)" has been funded with "(\d+)" and has approved "(\d+)"$`, steps.fundAndApprove)

	// Issuance
	ctx.Step(`^"([^"]*)" buys a pass for "([^"]*)"$`, steps.buyPass)
	ctx.Step(`^"([^"]*)" issues a free pass to "([^"]*)"$`, steps.adminIssue)
	ctx.Step(`^I save the pass as "([^"]*)"$`, steps.savePass)
	ctx.Step(`^I remember the number of passes issued$`, steps.rememberTotalIssued)
	ctx.Step(`^the number of passes issued should have grown by (\d+)$`, steps.totalIssuedGrewBy)

	// Validity
	ctx.Step(`^I get pass "([^"]*)"$`, steps.getPass)
	ctx.Step(`^pass "([^"]*)" should be valid$`, steps.passShouldBeValid)
	ctx.Step(`^pass "([^"]*)" should not be valid$`, steps.passShouldNotBeValid)
	ctx.Step(`^"([^"]*)" should be active$`, steps.accountShouldBeActive)
	ctx.Step(`^"([^"]*)" should not be active$`, steps.accountShouldNotBeActive)
	ctx.Step(`^I request the token URI of pass "([^"]*)"$`, steps.requestTokenURI)
	ctx.Step(`^the token URI should be "([^"]*)" followed by the id of pass "([^"]*)"$`, steps.tokenURIShouldBe)

	// Configuration
	ctx.Step(`^"([^"]*)" sets the pass cost to "([^"]*)"$`, steps.setPassCost)
	ctx.Step(`^"([^"]*)" sets the pass duration to (\d+) seconds$`, steps.setPassDuration)
	ctx.Step(`^"([^"]*)" sets the max supply to (\d+)$`, steps.setMaxSupply)
	ctx.Step(`^"([^"]*)" caps the max supply at the number of passes issued$`, steps.capMaxSupply)
	ctx.Step(`^"([^"]*)" sets the metadata base to "([^"]*)"$`, steps.setMetadataBase)
	ctx.Step(`^"([^"]*)" transfers the admin role to "([^"]*)"$`, steps.transferAdmin)

	// Treasury
	ctx.Step(`^"([^"]*)" withdraws the treasury to "([^"]*)"$`, steps.withdraw)
	ctx.Step(`^the withdrawn amount should be at least "(\d+)"$`, steps.withdrawnAtLeast)

	// Addresses
	ctx.Step(`^the response field "([^"]*)" should be the address of "([^"]*)"$`, steps.fieldShouldBeAddress)
}

type passSteps struct {
	tc          TestContext
	totalIssued uint64
}

func (s *passSteps) expectStatus(want int) error {
	if got := s.tc.GetLastResponseStatus(); got != want {
		return fmt.Errorf("expected status %d but got %d: %s", want, got, s.tc.GetLastResponseBody())
	}
	return nil
}

func (s *passSteps) fund(ctx context.Context, name, amount string) error {
	err := s.tc.POST("/dev/faucet", map[string]any{
		"account": s.tc.Account(name).Hex(),
		"amount":  amount,
	})
	if err != nil {
		return err
	}
	return s.expectStatus(http.StatusOK)
}

func (s *passSteps) fundAndApprove(ctx context.Context, name, amount, allowance string) error {
	if err := s.fund(ctx, name, amount); err != nil {
		return err
	}
	if err := s.tc.Do(http.MethodPost, "/dev/approve", name, map[string]any{"amount": allowance}); err != nil {
		return err
	}
	return s.expectStatus(http.StatusOK)
}

func (s *passSteps) buyPass(ctx context.Context, payer, recipient string) error {
	return s.tc.Do(http.MethodPost, "/passes", payer, map[string]any{
		"recipient": s.tc.Account(recipient).Hex(),
	})
}

func (s *passSteps) adminIssue(ctx context.Context, caller, recipient string) error {
	return s.tc.Do(http.MethodPost, "/admin/passes", caller, map[string]any{
		"recipient": s.tc.Account(recipient).Hex(),
	})
}

func (s *passSteps) savePass(ctx context.Context, name string) error {
	raw, err := s.tc.GetResponseField("id")
	if err != nil {
		return err
	}
	passID, ok := raw.(float64)
	if !ok {
		return fmt.Errorf("pass id has unexpected type %T", raw)
	}
	s.tc.SavePass(name, uint64(passID))
	return nil
}

func (s *passSteps) readTotalIssued() (uint64, error) {
	if err := s.tc.GET("/config"); err != nil {
		return 0, err
	}
	if err := s.expectStatus(http.StatusOK); err != nil {
		return 0, err
	}
	raw, err := s.tc.GetResponseField("total_issued")
	if err != nil {
		return 0, err
	}
	n, ok := raw.(float64)
	if !ok {
		return 0, fmt.Errorf("total_issued has unexpected type %T", raw)
	}
	return uint64(n), nil
}

func (s *passSteps) rememberTotalIssued(ctx context.Context) error {
	n, err := s.readTotalIssued()
	if err != nil {
		return err
	}
	s.totalIssued = n
	return nil
}

func (s *passSteps) totalIssuedGrewBy(ctx context.Context, delta int) error {
	n, err := s.readTotalIssued()
	if err != nil {
		return err
	}
	if n != s.totalIssued+uint64(delta) {
		return fmt.Errorf("expected %d passes issued but found %d", s.totalIssued+uint64(delta), n)
	}
	return nil
}

func (s *passSteps) passPath(name, suffix string) (string, error) {
	passID, err := s.tc.Pass(name)
	if err != nil {
		return "", err
	}
	return "/passes/" + strconv.FormatUint(passID, 10) + suffix, nil
}

func (s *passSteps) getPass(ctx context.Context, name string) error {
	path, err := s.passPath(name, "")
	if err != nil {
		return err
	}
	return s.tc.GET(path)
}

func (s *passSteps) boolField(path, field string) (bool, error) {
	if err := s.tc.GET(path); err != nil {
		return false, err
	}
	if err := s.expectStatus(http.StatusOK); err != nil {
		return false, err
	}
	raw, err := s.tc.GetResponseField(field)
	if err != nil {
		return false, err
	}
	b, ok := raw.(bool)
	if !ok {
		return false, fmt.Errorf("%s has unexpected type %T", field, raw)
	}
	return b, nil
}

func (s *passSteps) passValidity(name string, want bool) error {
	path, err := s.passPath(name, "/valid")
	if err != nil {
		return err
	}
	valid, err := s.boolField(path, "valid")
	if err != nil {
		return err
	}
	if valid != want {
		return fmt.Errorf("pass %s: expected valid=%t but got %t", name, want, valid)
	}
	return nil
}

func (s *passSteps) passShouldBeValid(ctx context.Context, name string) error {
	return s.passValidity(name, true)
}

func (s *passSteps) passShouldNotBeValid(ctx context.Context, name string) error {
	return s.passValidity(name, false)
}

func (s *passSteps) accountActivity(name string, want bool) error {
	active, err := s.boolField("/addresses/"+s.tc.Account(name).Hex()+"/active", "active")
	if err != nil {
		return err
	}
	if active != want {
		return fmt.Errorf("%s: expected active=%t but got %t", name, want, active)
	}
	return nil
}

func (s *passSteps) accountShouldBeActive(ctx context.Context, name string) error {
	return s.accountActivity(name, true)
}

func (s *passSteps) accountShouldNotBeActive(ctx context.Context, name string) error {
	return s.accountActivity(name, false)
}

func (s *passSteps) requestTokenURI(ctx context.Context, name string) error {
	path, err := s.passPath(name, "/uri")
	if err != nil {
		return err
	}
	return s.tc.GET(path)
}

func (s *passSteps) tokenURIShouldBe(ctx context.Context, base, name string) error {
	passID, err := s.tc.Pass(name)
	if err != nil {
		return err
	}
	raw, err := s.tc.GetResponseField("token_uri")
	if err != nil {
		return err
	}
	want := base + strconv.FormatUint(passID, 10)
	if fmt.Sprint(raw) != want {
		return fmt.Errorf("expected token URI %s but got %v", want, raw)
	}
	return nil
}

func (s *passSteps) setPassCost(ctx context.Context, caller, cost string) error {
	return s.tc.Do(http.MethodPut, "/admin/config/pass-cost", caller, map[string]any{"pass_cost": cost})
}

func (s *passSteps) setPassDuration(ctx context.Context, caller string, seconds int) error {
	return s.tc.Do(http.MethodPut, "/admin/config/pass-duration", caller, map[string]any{"pass_duration_seconds": seconds})
}

func (s *passSteps) setMaxSupply(ctx context.Context, caller string, n int) error {
	return s.tc.Do(http.MethodPut, "/admin/config/max-supply", caller, map[string]any{"max_supply": n})
}

func (s *passSteps) capMaxSupply(ctx context.Context, caller string) error {
	n, err := s.readTotalIssued()
	if err != nil {
		return err
	}
	if err := s.tc.Do(http.MethodPut, "/admin/config/max-supply", caller, map[string]any{"max_supply": n}); err != nil {
		return err
	}
	return s.expectStatus(http.StatusOK)
}

func (s *passSteps) setMetadataBase(ctx context.Context, caller, base string) error {
	return s.tc.Do(http.MethodPut, "/admin/config/metadata-base", caller, map[string]any{"metadata_base": base})
}

func (s *passSteps) transferAdmin(ctx context.Context, caller, newAdmin string) error {
	err := s.tc.Do(http.MethodPost, "/admin/transfer", caller, map[string]any{
		"new_admin": s.tc.Account(newAdmin).Hex(),
	})
	if err != nil {
		return err
	}
	if s.tc.GetLastResponseStatus() == http.StatusOK {
		s.tc.AdminTransferredTo(newAdmin)
	}
	return nil
}

func (s *passSteps) withdraw(ctx context.Context, caller, to string) error {
	return s.tc.Do(http.MethodPost, "/admin/withdraw", caller, map[string]any{
		"to": s.tc.Account(to).Hex(),
	})
}

func (s *passSteps) withdrawnAtLeast(ctx context.Context, min string) error {
	raw, err := s.tc.GetResponseField("amount")
	if err != nil {
		return err
	}
	got, ok := new(big.Int).SetString(fmt.Sprint(raw), 10)
	if !ok {
		return fmt.Errorf("amount %v is not an integer", raw)
	}
	want, _ := new(big.Int).SetString(min, 10)
	if got.Cmp(want) < 0 {
		return fmt.Errorf("expected at least %s withdrawn but got %s", min, got)
	}
	return nil
}

func (s *passSteps) fieldShouldBeAddress(ctx context.Context, field, name string) error {
	raw, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if !strings.EqualFold(fmt.Sprint(raw), s.tc.Account(name).Hex()) {
		return fmt.Errorf("field %s: expected %s but got %v", field, s.tc.Account(name).Hex(), raw)
	}
	return nil
}
