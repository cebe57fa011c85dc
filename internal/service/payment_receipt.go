package service

import (
	"context"
	"fmt"
	"log"

	"github.com/shinyyama/petverse-backend/internal/mailer"
	"github.com/shinyyama/petverse-backend/internal/model"
	"github.com/shinyyama/petverse-backend/internal/receipt"
	"github.com/shinyyama/petverse-backend/internal/reqctx"
)

// receiptDoc is everything needed to render and mail a receipt without
// touching the database again.
type receiptDoc struct {
	to      string
	subject string
	body    string
	name    string
	payment *receipt.Payment
	invoice *receipt.Invoice
}

func (d *receiptDoc) render() ([]byte, error) {
	if d.invoice != nil {
		return receipt.RenderInvoice(*d.invoice)
	}
	return receipt.RenderPayment(*d.payment)
}

func (s *paymentService) buildReceipt(ctx context.Context, p *model.Payment) (*receiptDoc, error) {
	payer, err := s.store.Users.FindByID(ctx, p.UserID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	paidAt := p.UpdatedAt
	if p.SettledAt != nil {
		paidAt = *p.SettledAt
	}
	rp := &receipt.Payment{
		ReceiptID: fmt.Sprintf("PV-%06d", p.ID),
		PaidAt:    paidAt,
		PaidBy:    payer.Name,
		Kind:      string(p.Kind),
		Amount:    p.Amount,
		Currency:  p.Currency,
	}
	doc := &receiptDoc{
		to:      payer.Email,
		name:    fmt.Sprintf("receipt-%d.pdf", p.ID),
		payment: rp,
	}
	amount := fmt.Sprintf("%s %s", p.Currency, p.Amount.StringFixed(2))

	switch p.Kind {
	case model.PaymentForAppointment:
		a, err := s.store.Appointments.FindByID(ctx, *p.AppointmentID)
		if err != nil {
			return nil, notFoundOr(err)
		}
		svc, pet := "", ""
		if a.Service != nil {
			svc = a.Service.Name
		}
		if a.OwnedPet != nil && a.OwnedPet.Pet != nil {
			pet = a.OwnedPet.Pet.Name
		}
		rp.Details = [][2]string{
			{"Appointment ID", fmt.Sprint(a.ID)},
			{"Service", svc},
			{"Pet", pet},
			{"Scheduled", a.AppointmentAt.Format("02 Jan 2006, 15:04")},
		}
		doc.subject = "PetVerse - Appointment Payment Successful"
		doc.body = fmt.Sprintf("Hi %s,\n\nYour payment for appointment #%d (%s for %s) was successful.\nAmount paid: %s\n\nYour receipt is attached.\n\nPetVerse",
			payer.Name, a.ID, svc, pet, amount)
	case model.PaymentForAdoption:
		req, err := s.store.Adoptions.FindByID(ctx, *p.AdoptionRequestID)
		if err != nil {
			return nil, notFoundOr(err)
		}
		party, err := resolveParty(ctx, s.store, req)
		if err != nil {
			return nil, err
		}
		rp.Details = [][2]string{
			{"Adoption Request", fmt.Sprint(req.ID)},
			{"Pet", party.pet.Name},
		}
		doc.subject = "PetVerse - Adoption Fee Payment Successful"
		doc.body = fmt.Sprintf("Hi %s,\n\nYour adoption fee for %s was received.\nAmount paid: %s\n\nYour receipt is attached.\n\nPetVerse",
			payer.Name, party.pet.Name, amount)
	case model.PaymentForShop:
		o, err := s.store.Shop.FindOrderByID(ctx, *p.OrderID)
		if err != nil {
			return nil, notFoundOr(err)
		}
		inv := &receipt.Invoice{
			OrderID:  o.ID,
			IssuedAt: paidAt,
			Customer: payer.Name,
			Currency: p.Currency,
			Total:    o.Total,
		}
		for _, it := range o.Items {
			inv.Lines = append(inv.Lines, receipt.InvoiceLine{Name: it.ProductName, Price: it.Price, Quantity: it.Quantity})
		}
		doc.invoice = inv
		doc.name = fmt.Sprintf("invoice-%d.pdf", o.ID)
		doc.subject = fmt.Sprintf("PetVerse Invoice - Order #%d", o.ID)
		doc.body = fmt.Sprintf("Hi %s,\n\nThank you for your order #%d.\nTotal paid: %s\n\nYour invoice is attached.\n\nPetVerse",
			payer.Name, o.ID, amount)
	}
	return doc, nil
}

// sendReceipt queues rendering, archiving and mailing after the settlement
// has committed. Failures are logged by the dispatcher and never reach the
// payer.
func (s *paymentService) sendReceipt(ctx context.Context, p *model.Payment) {
	rid := reqctx.RID(ctx)
	doc, err := s.buildReceipt(ctx, p)
	if err != nil {
		log.Printf("[payment] rid=%s payment=%d stage=receipt_build err=%v", rid, p.ID, err)
		return
	}
	sender, archive := s.cfg.Mail, s.cfg.Archive
	s.cfg.Dispatcher.Go("receipt", func(jctx context.Context) error {
		pdf, err := doc.render()
		if err != nil {
			return err
		}
		if archive != nil {
			url, err := archive.Put(jctx, "receipts/"+doc.name, pdf, "application/pdf")
			if err != nil {
				log.Printf("[payment] rid=%s payment=%d stage=receipt_archive err=%v", rid, p.ID, err)
			} else {
				log.Printf("[payment] rid=%s payment=%d stage=receipt_archive url=%s", rid, p.ID, url)
			}
		}
		if doc.to == "" {
			return nil
		}
		return sender.Send(jctx, mailer.Message{
			To:      doc.to,
			Subject: doc.subject,
			Body:    doc.body,
			Attachments: []mailer.Attachment{
				{Name: doc.name, ContentType: "application/pdf", Data: pdf},
			},
		})
	})
}
