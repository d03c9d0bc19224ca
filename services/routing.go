package services

import (
	"fmt"
	"log"
	"time"

	"github.com/open-ecommerce/helptext-sub001/models"

	"github.com/google/uuid"
)

// Repository interfaces consumed by the router. The database package
// provides the production implementation; tests use in-memory fakes.

type UserStore interface {
	UserByPhone(phone string) (*models.User, error)
	UserByID(id uuid.UUID) (*models.User, error)
	NextAvailableUser() (*models.User, error)
}

type ContactStore interface {
	CreateIntake(name, phone string, userID uuid.UUID) (*models.Case, error)
}

type CaseStore interface {
	CaseByID(id int64) (*models.Case, error)
	CurrentCaseForPhone(phone string) (*models.Case, error)
	ContactPhone(caseID int64) (string, error)
	Reassign(caseID int64, userID uuid.UUID) error
}

type MessageStore interface {
	CreateMessage(m *models.Message) error
}

// SMSGateway sends one text message; implemented by the Twilio and
// Telerivet clients in gateway.go.
type SMSGateway interface {
	Send(body, toPhone string) error
}

// RoutingSettings replaces the framework-global settings of the
// original system with an explicit struct passed into the workflow.
type RoutingSettings struct {
	Anonymize           bool
	AutoResponseEnabled bool
	AutoResponseText    string
}

type ErrorKind int

const (
	ErrNone ErrorKind = iota
	ErrNoAvailableCaseworker
	ErrMissingCaseReference
	ErrGatewayError
	ErrStorage
)

type OutcomeKind int

const (
	OutcomeNewCase OutcomeKind = iota
	OutcomeContinued
	OutcomeCaseworkerReply
	OutcomeCaseRefError
	OutcomeNoAvailableUser
	OutcomeFailed
)

// Outcome is the result of routing one inbound message. Err replaces
// exception-based control flow: gateway and resolver failures are
// enumerated, never raised.
type Outcome struct {
	Kind   OutcomeKind
	CaseID int64
	Err    ErrorKind
	Detail string
}

// Result is the plain-text body returned to the provider webhook.
func (o Outcome) Result() string {
	if o.Detail != "" {
		return o.Detail
	}
	switch o.Kind {
	case OutcomeNewCase:
		return fmt.Sprintf("new case %d created", o.CaseID)
	case OutcomeContinued:
		return fmt.Sprintf("message added to case %d", o.CaseID)
	case OutcomeCaseworkerReply:
		return fmt.Sprintf("reply forwarded for case %d", o.CaseID)
	}
	return "message processed"
}

const (
	resultNoUsersSMS  = "Not available users to take the sms"
	resultNoUsersCall = "Not available users to take the call"

	caseRefHelp = "Please use the format chat#<case id># followed by your message to answer a case."

	anonymizedBody = "[anonymized]"
	voiceCallBody  = "[voice call]"
)

// InboundMessage is the canonical message the provider adapters hand to
// the router after authentication.
type InboundMessage struct {
	Phone             string
	Body              string
	ProviderMessageID string
}

// InboundCall is an authenticated voice callback.
type InboundCall struct {
	Phone          string
	ProviderCallID string
}

// Router implements the inbound-message routing and case-threading
// workflow: resolving the sender, picking the target case, assigning a
// caseworker and deciding between automatic responses and forwards.
type Router struct {
	users    UserStore
	contacts ContactStore
	cases    CaseStore
	messages MessageStore
	gateway  SMSGateway
	settings RoutingSettings
	now      func() time.Time
}

func NewRouter(users UserStore, contacts ContactStore, cases CaseStore, messages MessageStore, gateway SMSGateway, settings RoutingSettings) *Router {
	return &Router{
		users:    users,
		contacts: contacts,
		cases:    cases,
		messages: messages,
		gateway:  gateway,
		settings: settings,
		now:      time.Now,
	}
}

// ReceiveSMS routes one authenticated inbound SMS.
func (r *Router) ReceiveSMS(in InboundMessage) Outcome {
	caseID, text := ParseChatRef(in.Body)

	user, err := r.users.UserByPhone(in.Phone)
	if err != nil {
		return r.storageFailure("look up sender profile", err)
	}
	if user != nil {
		return r.caseworkerReply(user, caseID, text, in)
	}
	return r.clientSMS(in, caseID)
}

// caseworkerReply forwards a caseworker's text to the client phone of
// the referenced case. A missing or unknown case reference gets an
// instructional reply instead; nothing is persisted on that path.
func (r *Router) caseworkerReply(user *models.User, caseID int64, text string, in InboundMessage) Outcome {
	var cse *models.Case
	if caseID > 0 {
		var err error
		cse, err = r.cases.CaseByID(caseID)
		if err != nil {
			return r.storageFailure("load referenced case", err)
		}
	}
	if cse == nil {
		if err := r.gateway.Send(caseRefHelp, in.Phone); err != nil {
			log.Printf("failed to send case-reference help to %s: %v", in.Phone, err)
		}
		return Outcome{Kind: OutcomeCaseRefError, Err: ErrMissingCaseReference, Detail: caseRefHelp}
	}

	toPhone, err := r.cases.ContactPhone(cse.ID)
	if err != nil {
		return r.storageFailure("resolve contact phone", err)
	}

	if err := r.gateway.Send(text, toPhone); err != nil {
		return Outcome{Kind: OutcomeFailed, CaseID: cse.ID, Err: ErrGatewayError, Detail: err.Error()}
	}
	r.persist(toPhone, cse.ID, models.SenderTypeUser, models.MessageTypeSMS, in.ProviderMessageID, text)
	return Outcome{Kind: OutcomeCaseworkerReply, CaseID: cse.ID}
}

func (r *Router) clientSMS(in InboundMessage, explicitCase int64) Outcome {
	cse, err := r.resolveCase(in.Phone, explicitCase)
	if err != nil {
		return r.storageFailure("resolve case", err)
	}
	if cse == nil {
		return r.newConversation(in)
	}
	return r.continueConversation(in, cse)
}

// resolveCase applies the threading rule: an explicit chat#<id># wins
// when the case exists, otherwise the phone's current case is used.
func (r *Router) resolveCase(phone string, explicitCase int64) (*models.Case, error) {
	if explicitCase > 0 {
		cse, err := r.cases.CaseByID(explicitCase)
		if err != nil {
			return nil, err
		}
		if cse != nil {
			return cse, nil
		}
	}
	return r.cases.CurrentCaseForPhone(phone)
}

// newConversation handles the first message from an unknown phone:
// assign a caseworker, create contact/phone/case, log the inbound text,
// optionally acknowledge the client and forward to the caseworker with
// a chat#<id># banner.
func (r *Router) newConversation(in InboundMessage) Outcome {
	user, err := r.users.NextAvailableUser()
	if err != nil {
		return r.storageFailure("select caseworker", err)
	}
	if user == nil {
		log.Printf("ESCALATION: no available caseworker for sms from %s, message dropped", in.Phone)
		return Outcome{Kind: OutcomeNoAvailableUser, Err: ErrNoAvailableCaseworker, Detail: resultNoUsersSMS}
	}

	cse, err := r.contacts.CreateIntake(notAssignedName(in.Phone), in.Phone, user.ID)
	if err != nil {
		return r.storageFailure("create intake", err)
	}
	if cse == nil {
		return r.storageFailure("create intake", fmt.Errorf("no case opened for %s", in.Phone))
	}
	if cse.UserID != user.ID {
		// Lost the intake race; the case already has an owner.
		if owner, err := r.users.UserByID(cse.UserID); err == nil && owner != nil {
			user = owner
		}
	}

	r.persist(in.Phone, cse.ID, models.SenderTypeContact, models.MessageTypeSMS, in.ProviderMessageID, in.Body)

	if r.settings.AutoResponseEnabled {
		if err := r.gateway.Send(r.settings.AutoResponseText, in.Phone); err != nil {
			log.Printf("failed to send automatic response to %s: %v", in.Phone, err)
		} else {
			r.persist(in.Phone, cse.ID, models.SenderTypeAutomated, models.MessageTypeSMS, "", r.settings.AutoResponseText)
		}
	}

	forward := fmt.Sprintf("chat#%d# %s", cse.ID, in.Body)
	if err := r.forwardToCaseworker(user, cse.ID, forward); err != nil {
		return Outcome{Kind: OutcomeFailed, CaseID: cse.ID, Err: ErrGatewayError, Detail: err.Error()}
	}
	return Outcome{Kind: OutcomeNewCase, CaseID: cse.ID}
}

// continueConversation threads a message from a known client onto its
// case. A closed case with auto-response enabled only acknowledges the
// client; otherwise the text is forwarded raw to the case owner,
// reassigning first when the owner is unavailable.
func (r *Router) continueConversation(in InboundMessage, cse *models.Case) Outcome {
	if !cse.IsOpen() && r.settings.AutoResponseEnabled {
		r.persist(in.Phone, cse.ID, models.SenderTypeContact, models.MessageTypeSMS, in.ProviderMessageID, in.Body)
		if err := r.gateway.Send(r.settings.AutoResponseText, in.Phone); err != nil {
			return Outcome{Kind: OutcomeFailed, CaseID: cse.ID, Err: ErrGatewayError, Detail: err.Error()}
		}
		r.persist(in.Phone, cse.ID, models.SenderTypeAutomated, models.MessageTypeSMS, "", r.settings.AutoResponseText)
		return Outcome{Kind: OutcomeContinued, CaseID: cse.ID}
	}

	owner, outcome := r.resolveOwner(cse, in.Phone, resultNoUsersSMS)
	if owner == nil {
		r.persist(in.Phone, cse.ID, models.SenderTypeContact, models.MessageTypeSMS, in.ProviderMessageID, in.Body)
		return outcome
	}

	r.persist(in.Phone, cse.ID, models.SenderTypeContact, models.MessageTypeSMS, in.ProviderMessageID, in.Body)

	if err := r.forwardToCaseworker(owner, cse.ID, in.Body); err != nil {
		return Outcome{Kind: OutcomeFailed, CaseID: cse.ID, Err: ErrGatewayError, Detail: err.Error()}
	}
	return Outcome{Kind: OutcomeContinued, CaseID: cse.ID}
}

// ReceiveCall routes one authenticated voice callback. The call itself
// is logged as a message of type call; the case owner is notified over
// SMS because the original call cannot be forwarded.
func (r *Router) ReceiveCall(in InboundCall) Outcome {
	user, err := r.users.UserByPhone(in.Phone)
	if err != nil {
		return r.storageFailure("look up sender profile", err)
	}
	if user != nil {
		// Calls carry no body, so there is no chat reference to thread on.
		log.Printf("ignoring voice call from caseworker %s", in.Phone)
		return Outcome{Kind: OutcomeCaseRefError, Err: ErrMissingCaseReference, Detail: "calls from caseworkers are not threaded"}
	}

	cse, err := r.cases.CurrentCaseForPhone(in.Phone)
	if err != nil {
		return r.storageFailure("resolve case", err)
	}

	if cse == nil {
		next, err := r.users.NextAvailableUser()
		if err != nil {
			return r.storageFailure("select caseworker", err)
		}
		if next == nil {
			log.Printf("ESCALATION: no available caseworker for call from %s, call dropped", in.Phone)
			return Outcome{Kind: OutcomeNoAvailableUser, Err: ErrNoAvailableCaseworker, Detail: resultNoUsersCall}
		}
		cse, err = r.contacts.CreateIntake(notAssignedName(in.Phone), in.Phone, next.ID)
		if err != nil {
			return r.storageFailure("create intake", err)
		}
		if cse == nil {
			return r.storageFailure("create intake", fmt.Errorf("no case opened for %s", in.Phone))
		}
		r.persist(in.Phone, cse.ID, models.SenderTypeContact, models.MessageTypeCall, in.ProviderCallID, voiceCallBody)
		r.notifyOwnerOfCall(next, cse.ID, in.Phone)
		return Outcome{Kind: OutcomeNewCase, CaseID: cse.ID}
	}

	owner, outcome := r.resolveOwner(cse, in.Phone, resultNoUsersCall)
	if owner == nil {
		r.persist(in.Phone, cse.ID, models.SenderTypeContact, models.MessageTypeCall, in.ProviderCallID, voiceCallBody)
		return outcome
	}

	r.persist(in.Phone, cse.ID, models.SenderTypeContact, models.MessageTypeCall, in.ProviderCallID, voiceCallBody)
	r.notifyOwnerOfCall(owner, cse.ID, in.Phone)
	return Outcome{Kind: OutcomeContinued, CaseID: cse.ID}
}

// resolveOwner returns the caseworker the message should reach,
// reassigning the case when the current owner is unavailable. When the
// whole pool is unavailable the inbound is still recorded by callers,
// but nothing is forwarded.
func (r *Router) resolveOwner(cse *models.Case, fromPhone, noUsersResult string) (*models.User, Outcome) {
	owner, err := r.users.UserByID(cse.UserID)
	if err != nil {
		return nil, r.storageFailure("load case owner", err)
	}
	if owner != nil && owner.Availability && owner.IsActive {
		return owner, Outcome{}
	}

	next, err := r.users.NextAvailableUser()
	if err != nil {
		return nil, r.storageFailure("select caseworker", err)
	}
	if next == nil {
		log.Printf("ESCALATION: case %d owner unavailable and no caseworker free for %s", cse.ID, fromPhone)
		return nil, Outcome{Kind: OutcomeNoAvailableUser, CaseID: cse.ID, Err: ErrNoAvailableCaseworker, Detail: noUsersResult}
	}
	if err := r.cases.Reassign(cse.ID, next.ID); err != nil {
		return nil, r.storageFailure("reassign case", err)
	}
	return next, Outcome{}
}

func (r *Router) forwardToCaseworker(user *models.User, caseID int64, body string) error {
	if user.Phone == nil || *user.Phone == "" {
		return fmt.Errorf("caseworker %s has no phone number", user.ID)
	}
	if err := r.gateway.Send(body, *user.Phone); err != nil {
		return err
	}
	r.persist(*user.Phone, caseID, models.SenderTypeAutomated, models.MessageTypeSMS, "", body)
	return nil
}

func (r *Router) notifyOwnerOfCall(user *models.User, caseID int64, fromPhone string) {
	body := fmt.Sprintf("chat#%d# Incoming call from %s", caseID, fromPhone)
	if err := r.forwardToCaseworker(user, caseID, body); err != nil {
		log.Printf("failed to notify caseworker of call for case %d: %v", caseID, err)
	}
}

// persist appends one message row. Anonymization replaces the body at
// capture time; rows are never updated afterwards.
func (r *Router) persist(phone string, caseID int64, senderType, messageType int, providerID, body string) {
	if r.settings.Anonymize {
		body = anonymizedBody
	}
	msg := &models.Message{
		Phone:         phone,
		CaseID:        caseID,
		SenderTypeID:  senderType,
		MessageTypeID: messageType,
		Body:          body,
		Sent:          r.now(),
	}
	if providerID != "" {
		msg.ProviderMessageID = &providerID
	}
	if err := r.messages.CreateMessage(msg); err != nil {
		log.Printf("failed to record message for case %d: %v", caseID, err)
	}
}

func (r *Router) storageFailure(op string, err error) Outcome {
	log.Printf("routing aborted, could not %s: %v", op, err)
	return Outcome{Kind: OutcomeFailed, Err: ErrStorage, Detail: fmt.Sprintf("could not %s", op)}
}

func notAssignedName(phone string) string {
	return fmt.Sprintf("Not Assigned (%s)", phone)
}
