package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/karehub/volunteer-match-service/src/internal/model"
	"github.com/karehub/volunteer-match-service/src/pkg/client"
)

type IntegrationTestSuite struct {
	suite.Suite
	baseURL string
	ctx     context.Context
}

func (suite *IntegrationTestSuite) SetupSuite() {
	suite.baseURL = os.Getenv("SERVICE_URL")
	if suite.baseURL == "" {
		suite.T().Skip("SERVICE_URL not set, skipping end-to-end suite")
	}
	suite.ctx = context.Background()
	suite.waitForService()
}

func (suite *IntegrationTestSuite) waitForService() {
	for i := 0; i < 30; i++ {
		resp, err := http.Get(suite.baseURL + "/health")
		if err == nil && resp.StatusCode == http.StatusOK {
			resp.Body.Close()
			return
		}
		fmt.Printf("waiting for service... (attempt %d/30)\n", i+1)
		time.Sleep(1 * time.Second)
	}
	suite.T().Fatal("service failed to start within 30 seconds")
}

func (suite *IntegrationTestSuite) newClient() *client.Client {
	c, err := client.New(client.Config{
		BaseURL:   suite.baseURL,
		TokenFile: filepath.Join(suite.T().TempDir(), "session.token"),
	})
	suite.Require().NoError(err)
	return c
}

func (suite *IntegrationTestSuite) TestFullFlow() {
	t := suite.T()
	stamp := time.Now().UnixNano()

	pin := suite.newClient()
	pinUser, err := pin.Register(suite.ctx, client.RegisterInput{
		Email:    fmt.Sprintf("pin-%d@example.com", stamp),
		Username: fmt.Sprintf("pin-%d", stamp),
		Password: "pa55word",
		FullName: "Pat Person",
	})
	assert.NoError(t, err)
	assert.Equal(t, model.RolePIN, pinUser.Role)

	csr := suite.newClient()
	csrUser, err := csr.Register(suite.ctx, client.RegisterInput{
		Email:    fmt.Sprintf("csr-%d@example.com", stamp),
		Username: fmt.Sprintf("csr-%d", stamp),
		Password: "pa55word",
		Role:     model.RoleCSR,
	})
	assert.NoError(t, err)
	assert.Equal(t, model.RoleCSR, csrUser.Role)

	req, err := pin.CreateRequest(suite.ctx, client.CreateRequestInput{
		Title:       "Move boxes",
		Description: "Help moving to a new flat",
		Location:    "Tampines",
		Urgency:     model.UrgencyHigh,
	})
	assert.NoError(t, err)
	assert.Equal(t, model.RequestPending, req.Status)

	offer, err := csr.CreateOffer(suite.ctx, req.ID, "happy to help")
	assert.NoError(t, err)
	assert.Equal(t, model.OfferAccepted, offer.Status)

	quitter := suite.newClient()
	quitterUser, err := quitter.Register(suite.ctx, client.RegisterInput{
		Email:    fmt.Sprintf("quitter-%d@example.com", stamp),
		Username: fmt.Sprintf("quitter-%d", stamp),
		Password: "pa55word",
		Role:     model.RoleCSR,
	})
	assert.NoError(t, err)
	quitterOffer, err := quitter.CreateOffer(suite.ctx, req.ID, "maybe")
	assert.NoError(t, err)
	_, err = quitter.WithdrawOffer(suite.ctx, quitterOffer.ID)
	assert.NoError(t, err)

	// an accepted offer keeps the request open
	fresh, err := pin.GetRequest(suite.ctx, req.ID)
	assert.NoError(t, err)
	assert.Equal(t, model.RequestPending, fresh.Status)

	tasks, err := csr.AcceptedTasks(suite.ctx)
	assert.NoError(t, err)
	assert.NotEmpty(t, tasks)

	assert.NoError(t, csr.CompleteTask(suite.ctx, offer.ID))

	done, err := pin.GetRequest(suite.ctx, req.ID)
	assert.NoError(t, err)
	assert.Equal(t, model.RequestCompleted, done.Status)
	assert.NotNil(t, done.CompletedAt)

	review, err := pin.SubmitReview(suite.ctx, csrUser.ID, req.ID, 5, "lifesaver")
	assert.NoError(t, err)
	assert.Equal(t, 5, review.Rating)

	// the volunteer who withdrew never helped, so they cannot be reviewed
	_, err = pin.SubmitReview(suite.ctx, quitterUser.ID, req.ID, 1, "no-show")
	var withdrawnErr *client.APIError
	assert.ErrorAs(t, err, &withdrawnErr)
	assert.Equal(t, http.StatusConflict, withdrawnErr.Status)

	entry, err := pin.AddToShortlist(suite.ctx, csrUser.ID)
	assert.NoError(t, err)
	assert.Equal(t, csrUser.ID, entry.VolunteerID)

	// a shortlisted volunteer cannot also be blacklisted
	_, err = pin.AddToBlacklist(suite.ctx, csrUser.ID, "testing exclusivity")
	var apiErr *client.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
}

func (suite *IntegrationTestSuite) TestSessionRestore() {
	t := suite.T()
	stamp := time.Now().UnixNano()

	tokenFile := filepath.Join(t.TempDir(), "session.token")
	c, err := client.New(client.Config{BaseURL: suite.baseURL, TokenFile: tokenFile})
	suite.Require().NoError(err)

	_, err = c.Register(suite.ctx, client.RegisterInput{
		Email:    fmt.Sprintf("restore-%d@example.com", stamp),
		Username: fmt.Sprintf("restore-%d", stamp),
		Password: "pa55word",
	})
	assert.NoError(t, err)

	// a second client sharing the token file picks the session up
	c2, err := client.New(client.Config{BaseURL: suite.baseURL, TokenFile: tokenFile})
	suite.Require().NoError(err)
	user, err := c2.RestoreSession(suite.ctx)
	assert.NoError(t, err)
	assert.NotZero(t, user.ID)
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationTestSuite))
}
