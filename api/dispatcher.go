/*
dispatcher.go - Post-commit intent dispatch to external collaborators

PURPOSE:
  The engine returns side-effect intents (documents to render, messages
  to deliver) after each committed command. The dispatcher is the
  boundary where those intents leave the engine. Dispatch runs after the
  save and outside the tenancy lock, so a slow collaborator can never
  block a command.

IMPLEMENTATIONS:
  LogDispatcher: Logs every intent and simulates the document
  collaborator by attaching deterministic file references back onto the
  tenancy. Suitable for development and tests. A production deployment
  replaces this with real PDF rendering and push/email delivery.

SEE ALSO:
  - lodger/intents.go: The intent catalogue
  - handlers.go: Calls Dispatch after every mutating endpoint
*/
package api

import (
	"context"
	"fmt"
	"log"

	"github.com/haven/lodger-engine/lodger"
)

// Dispatcher consumes post-commit intents.
type Dispatcher interface {
	Dispatch(ctx context.Context, intents []lodger.Intent)
}

// LogDispatcher logs intents and writes simulated document references
// back to the engine.
type LogDispatcher struct {
	Engine *lodger.Engine
}

func NewLogDispatcher(engine *lodger.Engine) *LogDispatcher {
	return &LogDispatcher{Engine: engine}
}

func (d *LogDispatcher) Dispatch(ctx context.Context, intents []lodger.Intent) {
	for _, intent := range intents {
		switch it := intent.(type) {
		case lodger.GenerateAgreementPDF:
			ref := fmt.Sprintf("docs/agreements/%s.pdf", it.TenancyID)
			if err := d.Engine.AttachAgreement(ctx, it.TenancyID, ref); err != nil {
				log.Printf("[Dispatcher] Failed to attach agreement for %s: %v", it.TenancyID, err)
				continue
			}
			log.Printf("[Dispatcher] Generated agreement %s", ref)

		case lodger.GenerateDeductionStatement:
			ref := fmt.Sprintf("docs/deductions/%s.pdf", it.DeductionID)
			if err := d.Engine.AttachDeductionStatement(ctx, it.TenancyID, it.DeductionID, ref); err != nil {
				log.Printf("[Dispatcher] Failed to attach statement for %s: %v", it.DeductionID, err)
				continue
			}
			log.Printf("[Dispatcher] Generated deduction statement %s", ref)

		case lodger.GenerateTerminationNotice:
			kind := "notice"
			if it.Immediate {
				kind = "immediate notice"
			}
			log.Printf("[Dispatcher] Generated termination %s for %s, effective %s",
				kind, it.TenancyID, it.EffectiveDate)

		case lodger.GenerateBreachLetter:
			log.Printf("[Dispatcher] Generated breach letter for %s (%s), remedy by %s",
				it.TenancyID, it.BreachType, it.RemedyDeadline)

		case lodger.GenerateExtensionOffer:
			log.Printf("[Dispatcher] Generated extension offer %s for %s", it.NoticeID, it.TenancyID)

		case lodger.Notify:
			log.Printf("[Dispatcher] Notify %s [%s] %s: %s", it.UserID, it.Type, it.Title, it.Message)

		default:
			log.Printf("[Dispatcher] Unhandled intent %s", intent.IntentType())
		}
	}
}
