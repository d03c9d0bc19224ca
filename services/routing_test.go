package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/open-ecommerce/helptext-sub001/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	users          []*models.User
	casesByID      map[int64]*models.Case
	currentByPhone map[string]*models.Case
	contactPhones  map[int64]string
	intakeNames    []string
	messages       []*models.Message
	nextCaseID     int64
	reassignments  map[int64]uuid.UUID
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		casesByID:      map[int64]*models.Case{},
		currentByPhone: map[string]*models.Case{},
		contactPhones:  map[int64]string{},
		reassignments:  map[int64]uuid.UUID{},
		nextCaseID:     1,
	}
}

func (f *fakeStore) addUser(phone string, available bool) *models.User {
	p := phone
	user := &models.User{ID: uuid.New(), Phone: &p, Availability: available, IsActive: true}
	f.users = append(f.users, user)
	return user
}

func (f *fakeStore) addCase(phone string, userID uuid.UUID, state string) *models.Case {
	cse := &models.Case{
		ID:        f.nextCaseID,
		ContactID: uuid.New(),
		UserID:    userID,
		State:     state,
		StartDate: time.Now(),
	}
	f.nextCaseID++
	f.casesByID[cse.ID] = cse
	f.currentByPhone[phone] = cse
	f.contactPhones[cse.ID] = phone
	return cse
}

func (f *fakeStore) UserByPhone(phone string) (*models.User, error) {
	for _, user := range f.users {
		if user.Phone != nil && *user.Phone == phone {
			return user, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) UserByID(id uuid.UUID) (*models.User, error) {
	for _, user := range f.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) NextAvailableUser() (*models.User, error) {
	for _, user := range f.users {
		if user.Availability && user.IsActive {
			return user, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) CreateIntake(name, phone string, userID uuid.UUID) (*models.Case, error) {
	f.intakeNames = append(f.intakeNames, name)
	cse := f.addCase(phone, userID, models.CaseStateOpen)
	return cse, nil
}

func (f *fakeStore) CaseByID(id int64) (*models.Case, error) {
	return f.casesByID[id], nil
}

func (f *fakeStore) CurrentCaseForPhone(phone string) (*models.Case, error) {
	return f.currentByPhone[phone], nil
}

func (f *fakeStore) ContactPhone(caseID int64) (string, error) {
	phone, ok := f.contactPhones[caseID]
	if !ok {
		return "", fmt.Errorf("case %d has no contact phone", caseID)
	}
	return phone, nil
}

func (f *fakeStore) Reassign(caseID int64, userID uuid.UUID) error {
	f.reassignments[caseID] = userID
	f.casesByID[caseID].UserID = userID
	return nil
}

func (f *fakeStore) CreateMessage(m *models.Message) error {
	f.messages = append(f.messages, m)
	return nil
}

// nilIntakeStore simulates an intake that opens no case and reports no
// error, which the router must treat as a storage failure.
type nilIntakeStore struct {
	*fakeStore
}

func (s *nilIntakeStore) CreateIntake(name, phone string, userID uuid.UUID) (*models.Case, error) {
	return nil, nil
}

type send struct {
	body    string
	toPhone string
}

type fakeGateway struct {
	sends []send
	err   error
}

func (g *fakeGateway) Send(body, toPhone string) error {
	if g.err != nil {
		return g.err
	}
	g.sends = append(g.sends, send{body: body, toPhone: toPhone})
	return nil
}

func newTestRouter(store *fakeStore, gateway *fakeGateway, settings RoutingSettings) *Router {
	return NewRouter(store, store, store, store, gateway, settings)
}

func TestReceiveSMS_UnknownPhoneCreatesCase(t *testing.T) {
	store := newFakeStore()
	alice := store.addUser("+15550009999", true)
	gateway := &fakeGateway{}
	router := newTestRouter(store, gateway, RoutingSettings{})

	outcome := router.ReceiveSMS(InboundMessage{
		Phone:             "+15550001111",
		Body:              "help",
		ProviderMessageID: "SM123",
	})

	require.Equal(t, OutcomeNewCase, outcome.Kind)
	require.Equal(t, int64(1), outcome.CaseID)

	require.Len(t, store.intakeNames, 1)
	assert.Equal(t, "Not Assigned (+15550001111)", store.intakeNames[0])
	assert.Equal(t, alice.ID, store.casesByID[1].UserID)
	assert.Equal(t, models.CaseStateOpen, store.casesByID[1].State)

	// One inbound row, one forwarded row
	require.Len(t, store.messages, 2)
	inbound := store.messages[0]
	assert.Equal(t, "+15550001111", inbound.Phone)
	assert.Equal(t, models.SenderTypeContact, inbound.SenderTypeID)
	assert.Equal(t, "help", inbound.Body)
	require.NotNil(t, inbound.ProviderMessageID)
	assert.Equal(t, "SM123", *inbound.ProviderMessageID)

	forwarded := store.messages[1]
	assert.Equal(t, "+15550009999", forwarded.Phone)
	assert.Equal(t, models.SenderTypeAutomated, forwarded.SenderTypeID)
	assert.Equal(t, "chat#1# help", forwarded.Body)

	require.Len(t, gateway.sends, 1)
	assert.Equal(t, "chat#1# help", gateway.sends[0].body)
	assert.Equal(t, "+15550009999", gateway.sends[0].toPhone)
}

func TestReceiveSMS_UnknownPhoneWithAutoResponse(t *testing.T) {
	store := newFakeStore()
	store.addUser("+15550009999", true)
	gateway := &fakeGateway{}
	router := newTestRouter(store, gateway, RoutingSettings{
		AutoResponseEnabled: true,
		AutoResponseText:    "We will contact you.",
	})

	outcome := router.ReceiveSMS(InboundMessage{Phone: "+15550001111", Body: "help"})

	require.Equal(t, OutcomeNewCase, outcome.Kind)
	// inbound + auto response + forward
	require.Len(t, store.messages, 3)
	require.Len(t, gateway.sends, 2)
	assert.Equal(t, "We will contact you.", gateway.sends[0].body)
	assert.Equal(t, "+15550001111", gateway.sends[0].toPhone)
	assert.Equal(t, "chat#1# help", gateway.sends[1].body)
}

func TestReceiveSMS_NoAvailableCaseworker(t *testing.T) {
	store := newFakeStore()
	store.addUser("+15550009999", false)
	gateway := &fakeGateway{}
	router := newTestRouter(store, gateway, RoutingSettings{AutoResponseEnabled: true, AutoResponseText: "hi"})

	outcome := router.ReceiveSMS(InboundMessage{Phone: "+15550001111", Body: "help"})

	require.Equal(t, OutcomeNoAvailableUser, outcome.Kind)
	assert.Equal(t, ErrNoAvailableCaseworker, outcome.Err)
	assert.Equal(t, "Not available users to take the sms", outcome.Result())

	// Nothing is created for an unknown phone when the pool is empty.
	assert.Empty(t, store.intakeNames)
	assert.Empty(t, store.messages)
	assert.Empty(t, gateway.sends)
}

func TestReceiveSMS_IntakeWithoutCaseFailsCleanly(t *testing.T) {
	store := newFakeStore()
	store.addUser("+15550009999", true)
	gateway := &fakeGateway{}
	router := NewRouter(store, &nilIntakeStore{store}, store, store, gateway, RoutingSettings{})

	outcome := router.ReceiveSMS(InboundMessage{Phone: "+15550001111", Body: "help"})

	require.Equal(t, OutcomeFailed, outcome.Kind)
	assert.Equal(t, ErrStorage, outcome.Err)
	assert.Empty(t, store.messages)
	assert.Empty(t, gateway.sends)
}

func TestReceiveCall_IntakeWithoutCaseFailsCleanly(t *testing.T) {
	store := newFakeStore()
	store.addUser("+15550009999", true)
	gateway := &fakeGateway{}
	router := NewRouter(store, &nilIntakeStore{store}, store, store, gateway, RoutingSettings{})

	outcome := router.ReceiveCall(InboundCall{Phone: "+15550001111"})

	require.Equal(t, OutcomeFailed, outcome.Kind)
	assert.Equal(t, ErrStorage, outcome.Err)
	assert.Empty(t, store.messages)
}

func TestReceiveSMS_ClosedCaseAutoResponse(t *testing.T) {
	store := newFakeStore()
	bob := store.addUser("+15550008888", true)
	store.nextCaseID = 6
	cse := store.addCase("+15550002222", bob.ID, models.CaseStateClosed)
	gateway := &fakeGateway{}
	router := newTestRouter(store, gateway, RoutingSettings{
		AutoResponseEnabled: true,
		AutoResponseText:    "We will contact you.",
	})

	outcome := router.ReceiveSMS(InboundMessage{Phone: "+15550002222", Body: "hello again"})

	require.Equal(t, OutcomeContinued, outcome.Kind)
	assert.Equal(t, cse.ID, outcome.CaseID)
	assert.Equal(t, models.CaseStateClosed, store.casesByID[6].State)

	// Exactly one outbound message, the template; no forward.
	require.Len(t, gateway.sends, 1)
	assert.Equal(t, "We will contact you.", gateway.sends[0].body)
	assert.Equal(t, "+15550002222", gateway.sends[0].toPhone)

	var outbound []*models.Message
	for _, msg := range store.messages {
		if msg.SenderTypeID == models.SenderTypeAutomated {
			outbound = append(outbound, msg)
		}
	}
	require.Len(t, outbound, 1)
	assert.Equal(t, "We will contact you.", outbound[0].Body)
}

func TestReceiveSMS_OpenCaseForwardsRawText(t *testing.T) {
	store := newFakeStore()
	bob := store.addUser("+15550008888", true)
	cse := store.addCase("+15550002222", bob.ID, models.CaseStateOpen)
	gateway := &fakeGateway{}
	router := newTestRouter(store, gateway, RoutingSettings{AutoResponseEnabled: true, AutoResponseText: "ack"})

	outcome := router.ReceiveSMS(InboundMessage{Phone: "+15550002222", Body: "any news?"})

	require.Equal(t, OutcomeContinued, outcome.Kind)
	assert.Equal(t, cse.ID, outcome.CaseID)

	// No automatic response on an open conversation, just the forward.
	require.Len(t, gateway.sends, 1)
	assert.Equal(t, "any news?", gateway.sends[0].body)
	assert.Equal(t, "+15550008888", gateway.sends[0].toPhone)
}

func TestReceiveSMS_UnavailableOwnerIsReassigned(t *testing.T) {
	store := newFakeStore()
	alice := store.addUser("+15550009999", true)
	bob := store.addUser("+15550008888", false)
	cse := store.addCase("+15550002222", bob.ID, models.CaseStateOpen)
	gateway := &fakeGateway{}
	router := newTestRouter(store, gateway, RoutingSettings{})

	outcome := router.ReceiveSMS(InboundMessage{Phone: "+15550002222", Body: "hello"})

	require.Equal(t, OutcomeContinued, outcome.Kind)
	assert.Equal(t, alice.ID, store.reassignments[cse.ID])
	require.Len(t, gateway.sends, 1)
	assert.Equal(t, "+15550009999", gateway.sends[0].toPhone)
}

func TestReceiveSMS_UnavailableOwnerEmptyPoolStillRecordsInbound(t *testing.T) {
	store := newFakeStore()
	bob := store.addUser("+15550008888", false)
	cse := store.addCase("+15550002222", bob.ID, models.CaseStateOpen)
	gateway := &fakeGateway{}
	router := newTestRouter(store, gateway, RoutingSettings{})

	outcome := router.ReceiveSMS(InboundMessage{Phone: "+15550002222", Body: "hello"})

	require.Equal(t, OutcomeNoAvailableUser, outcome.Kind)
	assert.Equal(t, cse.ID, outcome.CaseID)
	require.Len(t, store.messages, 1)
	assert.Equal(t, models.SenderTypeContact, store.messages[0].SenderTypeID)
	assert.Empty(t, gateway.sends)
}

func TestReceiveSMS_CaseworkerReply(t *testing.T) {
	store := newFakeStore()
	alice := store.addUser("+15550009999", true)
	store.nextCaseID = 6
	store.addCase("+15550002222", alice.ID, models.CaseStateOpen)
	gateway := &fakeGateway{}
	router := newTestRouter(store, gateway, RoutingSettings{})

	outcome := router.ReceiveSMS(InboundMessage{Phone: "+15550009999", Body: "chat#6# please call back"})

	require.Equal(t, OutcomeCaseworkerReply, outcome.Kind)
	assert.Equal(t, int64(6), outcome.CaseID)

	require.Len(t, gateway.sends, 1)
	assert.Equal(t, "please call back", gateway.sends[0].body)
	assert.Equal(t, "+15550002222", gateway.sends[0].toPhone)

	require.Len(t, store.messages, 1)
	assert.Equal(t, models.SenderTypeUser, store.messages[0].SenderTypeID)
	assert.Equal(t, "please call back", store.messages[0].Body)
}

func TestReceiveSMS_CaseworkerWithoutReferenceGetsHelp(t *testing.T) {
	store := newFakeStore()
	store.addUser("+15550009999", true)
	gateway := &fakeGateway{}
	router := newTestRouter(store, gateway, RoutingSettings{})

	outcome := router.ReceiveSMS(InboundMessage{Phone: "+15550009999", Body: "hello?"})

	require.Equal(t, OutcomeCaseRefError, outcome.Kind)
	assert.Equal(t, ErrMissingCaseReference, outcome.Err)

	// Exactly one error reply, zero persisted messages.
	require.Len(t, gateway.sends, 1)
	assert.Equal(t, "+15550009999", gateway.sends[0].toPhone)
	assert.Contains(t, gateway.sends[0].body, "chat#<case id>#")
	assert.Empty(t, store.messages)
}

func TestReceiveSMS_CaseworkerWithUnknownCaseGetsHelp(t *testing.T) {
	store := newFakeStore()
	store.addUser("+15550009999", true)
	gateway := &fakeGateway{}
	router := newTestRouter(store, gateway, RoutingSettings{})

	outcome := router.ReceiveSMS(InboundMessage{Phone: "+15550009999", Body: "chat#42# anyone there"})

	require.Equal(t, OutcomeCaseRefError, outcome.Kind)
	assert.Empty(t, store.messages)
}

func TestReceiveSMS_ClientChatRefFallsBackToCurrentCase(t *testing.T) {
	store := newFakeStore()
	bob := store.addUser("+15550008888", true)
	cse := store.addCase("+15550002222", bob.ID, models.CaseStateOpen)
	gateway := &fakeGateway{}
	router := newTestRouter(store, gateway, RoutingSettings{})

	// Case 99 does not exist; routing falls back to the phone's current case.
	outcome := router.ReceiveSMS(InboundMessage{Phone: "+15550002222", Body: "chat#99# hi"})

	require.Equal(t, OutcomeContinued, outcome.Kind)
	assert.Equal(t, cse.ID, outcome.CaseID)
}

func TestReceiveSMS_AnonymizationAtCapture(t *testing.T) {
	store := newFakeStore()
	store.addUser("+15550009999", true)
	gateway := &fakeGateway{}
	router := newTestRouter(store, gateway, RoutingSettings{Anonymize: true})

	router.ReceiveSMS(InboundMessage{Phone: "+15550001111", Body: "something sensitive"})

	// The forwarded SMS carries the real text; only stored rows are masked.
	require.Len(t, gateway.sends, 1)
	assert.Contains(t, gateway.sends[0].body, "something sensitive")
	require.NotEmpty(t, store.messages)
	for _, msg := range store.messages {
		assert.Equal(t, "[anonymized]", msg.Body)
	}
}

func TestReceiveSMS_GatewayErrorSurfaced(t *testing.T) {
	store := newFakeStore()
	alice := store.addUser("+15550009999", true)
	store.nextCaseID = 6
	store.addCase("+15550002222", alice.ID, models.CaseStateOpen)
	gateway := &fakeGateway{err: errors.New("provider unreachable")}
	router := newTestRouter(store, gateway, RoutingSettings{})

	outcome := router.ReceiveSMS(InboundMessage{Phone: "+15550009999", Body: "chat#6# hi"})

	require.Equal(t, OutcomeFailed, outcome.Kind)
	assert.Equal(t, ErrGatewayError, outcome.Err)
	assert.Equal(t, "provider unreachable", outcome.Result())
	assert.Empty(t, store.messages)
}

func TestReceiveSMS_DuplicateDeliveryIsNotDeduplicated(t *testing.T) {
	store := newFakeStore()
	bob := store.addUser("+15550008888", true)
	store.addCase("+15550002222", bob.ID, models.CaseStateOpen)
	gateway := &fakeGateway{}
	router := newTestRouter(store, gateway, RoutingSettings{})

	in := InboundMessage{Phone: "+15550002222", Body: "hello", ProviderMessageID: "SM1"}
	router.ReceiveSMS(in)
	router.ReceiveSMS(in)

	// Redelivered webhooks create duplicate rows; the provider message id
	// is recorded so operators can spot them.
	var inbound int
	for _, msg := range store.messages {
		if msg.SenderTypeID == models.SenderTypeContact {
			inbound++
			require.NotNil(t, msg.ProviderMessageID)
			assert.Equal(t, "SM1", *msg.ProviderMessageID)
		}
	}
	assert.Equal(t, 2, inbound)
}

func TestReceiveCall_UnknownPhoneCreatesCase(t *testing.T) {
	store := newFakeStore()
	alice := store.addUser("+15550009999", true)
	gateway := &fakeGateway{}
	router := newTestRouter(store, gateway, RoutingSettings{})

	outcome := router.ReceiveCall(InboundCall{Phone: "+15550001111", ProviderCallID: "CA123"})

	require.Equal(t, OutcomeNewCase, outcome.Kind)
	assert.Equal(t, alice.ID, store.casesByID[outcome.CaseID].UserID)

	require.Len(t, store.messages, 2)
	callRow := store.messages[0]
	assert.Equal(t, models.MessageTypeCall, callRow.MessageTypeID)
	assert.Equal(t, models.SenderTypeContact, callRow.SenderTypeID)
	require.NotNil(t, callRow.ProviderMessageID)
	assert.Equal(t, "CA123", *callRow.ProviderMessageID)

	require.Len(t, gateway.sends, 1)
	assert.Contains(t, gateway.sends[0].body, "Incoming call from +15550001111")
}

func TestReceiveCall_NoAvailableCaseworker(t *testing.T) {
	store := newFakeStore()
	gateway := &fakeGateway{}
	router := newTestRouter(store, gateway, RoutingSettings{})

	outcome := router.ReceiveCall(InboundCall{Phone: "+15550001111"})

	require.Equal(t, OutcomeNoAvailableUser, outcome.Kind)
	assert.Equal(t, "Not available users to take the call", outcome.Result())
	assert.Empty(t, store.messages)
}

func TestReceiveCall_FromCaseworkerIsIgnored(t *testing.T) {
	store := newFakeStore()
	store.addUser("+15550009999", true)
	gateway := &fakeGateway{}
	router := newTestRouter(store, gateway, RoutingSettings{})

	outcome := router.ReceiveCall(InboundCall{Phone: "+15550009999"})

	require.Equal(t, OutcomeCaseRefError, outcome.Kind)
	assert.Empty(t, store.messages)
	assert.Empty(t, gateway.sends)
}
