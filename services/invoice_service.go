package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	config "github.com/ranktutor/ranktutor/configs"
	"github.com/ranktutor/ranktutor/database"
	"github.com/ranktutor/ranktutor/models"
)

// GenerateInvoiceNumber yields numbers like INV-20260901-1A2B3C4D.
func GenerateInvoiceNumber(now time.Time) string {
	suffix := strings.ToUpper(uuid.New().String()[:8])
	return fmt.Sprintf("INV-%s-%s", now.Format("20060102"), suffix)
}

// RenderAndStoreInvoice renders the invoice to PDF and uploads it. Runs in
// the background after settlement; failures only log, the invoice row keeps
// a nil file URL and rendering can be retried from the admin panel.
func RenderAndStoreInvoice(invoiceID uuid.UUID) {
	var invoice models.Invoice
	if err := database.DB.
		Preload("Payment.Booking.Subject").
		Preload("Payment.Student").
		Preload("Payment.Tutor").
		First(&invoice, "id = ?", invoiceID).Error; err != nil {
		log.Printf("🔥 Invoice %s not found for rendering: %v", invoiceID, err)
		return
	}

	htmlData, err := generateInvoiceHTML(&invoice)
	if err != nil {
		log.Printf("🔥 Failed to render invoice HTML for %s: %v", invoice.InvoiceNumber, err)
		return
	}

	pdfBytes, err := generatePDFFromHTML(htmlData)
	if err != nil {
		log.Printf("🔥 Failed to generate invoice PDF for %s: %v", invoice.InvoiceNumber, err)
		return
	}

	uploadURL, err := uploadToCloudinary(pdfBytes, "invoices", invoice.InvoiceNumber)
	if err != nil {
		log.Printf("🔥 Failed to upload invoice %s: %v", invoice.InvoiceNumber, err)
		return
	}

	invoice.FileURL = &uploadURL
	if err := database.DB.Save(&invoice).Error; err != nil {
		log.Printf("🔥 Failed to store invoice URL for %s: %v", invoice.InvoiceNumber, err)
		return
	}
	log.Printf("✅ Generated invoice %s", invoice.InvoiceNumber)
}

func generateInvoiceHTML(invoice *models.Invoice) (string, error) {
	tmpl, err := template.ParseFiles("templates/invoice.html")
	if err != nil {
		return "", err
	}

	data := struct {
		InvoiceNumber    string
		StudentName      string
		TutorName        string
		SubjectName      string
		LessonDate       string
		Amount           float64
		CommissionAmount float64
		TutorPayout      float64
		IssuedOn         string
	}{
		InvoiceNumber:    invoice.InvoiceNumber,
		StudentName:      invoice.Payment.Student.FullName,
		TutorName:        invoice.Payment.Tutor.FullName,
		SubjectName:      invoice.Payment.Booking.Subject.Name,
		LessonDate:       invoice.Payment.Booking.LessonDate.Format("January 2, 2006"),
		Amount:           invoice.Payment.Amount,
		CommissionAmount: invoice.Payment.CommissionAmount,
		TutorPayout:      invoice.Payment.TutorPayout,
		IssuedOn:         time.Now().Format("January 2, 2006"),
	}

	var renderedHTML bytes.Buffer
	if err := tmpl.Execute(&renderedHTML, data); err != nil {
		return "", err
	}
	return renderedHTML.String(), nil
}

func generatePDFFromHTML(htmlContent string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	var pdfBuffer []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}

func uploadToCloudinary(fileBytes []byte, folder, name string) (string, error) {
	cld, err := cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uploadParams := uploader.UploadParams{
		PublicID:     fmt.Sprintf("%s/%s_%s", folder, name, uuid.New().String()),
		Folder:       "ranktutor_documents",
		ResourceType: "raw",
	}

	uploadResult, err := cld.Upload.Upload(ctx, bytes.NewReader(fileBytes), uploadParams)
	if err != nil {
		return "", err
	}

	return uploadResult.SecureURL, nil
}
