/*
intents.go - Side-effect intents for external collaborators

PURPOSE:
  The engine never performs I/O beyond its own store. Anything slow or
  external - rendering a document, delivering a notification - is emitted
  as a typed intent after the state change commits. Collaborators consume
  intents; the engine stores only the opaque file references they return.

  Because intents are dispatched post-commit, a slow document generator
  can never hold a tenancy lock.

SEE ALSO:
  - lifecycle.go: Emits intents from each command
  - api/dispatcher.go: The collaborator boundary
*/
package lodger

// Intent is a post-commit instruction for an external collaborator.
type Intent interface {
	// IntentType identifies the intent for routing and audit logs.
	IntentType() string
}

// =============================================================================
// DOCUMENT GENERATION
// =============================================================================

// GenerateAgreementPDF asks the document collaborator to render the
// signed tenancy agreement.
type GenerateAgreementPDF struct {
	TenancyID TenancyID
}

func (GenerateAgreementPDF) IntentType() string { return "generate_agreement_pdf" }

// GenerateBreachLetter asks for a breach-notice letter.
type GenerateBreachLetter struct {
	TenancyID      TenancyID
	NoticeID       NoticeID
	BreachType     string
	Description    string
	RemedyDeadline Date
}

func (GenerateBreachLetter) IntentType() string { return "generate_breach_letter" }

// GenerateDeductionStatement asks for a deduction statement.
type GenerateDeductionStatement struct {
	TenancyID   TenancyID
	DeductionID DeductionID
}

func (GenerateDeductionStatement) IntentType() string { return "generate_deduction_statement" }

// GenerateExtensionOffer asks for an extension-offer document.
type GenerateExtensionOffer struct {
	TenancyID TenancyID
	NoticeID  NoticeID
}

func (GenerateExtensionOffer) IntentType() string { return "generate_extension_offer" }

// GenerateTerminationNotice asks for a termination-notice letter.
// Immediate marks the irreversible zero-day path so audit trails can
// distinguish it from ordinary notices.
type GenerateTerminationNotice struct {
	TenancyID     TenancyID
	NoticeID      NoticeID
	EffectiveDate Date
	Immediate     bool
}

func (GenerateTerminationNotice) IntentType() string { return "generate_termination_notice" }

// =============================================================================
// NOTIFICATION
// =============================================================================

// Notify asks the notifier collaborator to deliver a message.
// Delivery and retry are out of the engine's scope.
type Notify struct {
	UserID  string
	Type    string
	Title   string
	Message string
}

func (Notify) IntentType() string { return "notify" }
