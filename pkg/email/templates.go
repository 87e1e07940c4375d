package email

import (
	"bytes"
	"html/template"
	"log"
)

// TemplateManager holds the parsed lifecycle email templates.
type TemplateManager struct {
	PaymentReceivedTmpl *template.Template
	OrderStatusTmpl     *template.Template
	PlanCompletedTmpl   *template.Template
}

// NewTemplateManager parses all email templates at startup.
func NewTemplateManager() (*TemplateManager, error) {
	paymentTmpl, err := template.New("paymentReceived").Parse(paymentReceivedTemplate)
	if err != nil {
		return nil, err
	}

	statusTmpl, err := template.New("orderStatus").Parse(orderStatusTemplate)
	if err != nil {
		return nil, err
	}

	planTmpl, err := template.New("planCompleted").Parse(planCompletedTemplate)
	if err != nil {
		return nil, err
	}

	log.Println("Email templates parsed successfully.")
	return &TemplateManager{
		PaymentReceivedTmpl: paymentTmpl,
		OrderStatusTmpl:     statusTmpl,
		PlanCompletedTmpl:   planTmpl,
	}, nil
}

// TemplateData holds the dynamic data for a lifecycle email.
type TemplateData struct {
	Name    string
	Amount  string
	Status  string
	Kitchen string
	Renewed bool
}

// GeneratePaymentReceivedHTML executes the payment receipt template.
func (tm *TemplateManager) GeneratePaymentReceivedHTML(data TemplateData) (string, error) {
	var body bytes.Buffer
	if err := tm.PaymentReceivedTmpl.Execute(&body, data); err != nil {
		return "", err
	}
	return body.String(), nil
}

// GenerateOrderStatusHTML executes the delivery status template.
func (tm *TemplateManager) GenerateOrderStatusHTML(data TemplateData) (string, error) {
	var body bytes.Buffer
	if err := tm.OrderStatusTmpl.Execute(&body, data); err != nil {
		return "", err
	}
	return body.String(), nil
}

// GeneratePlanCompletedHTML executes the subscription completion template.
func (tm *TemplateManager) GeneratePlanCompletedHTML(data TemplateData) (string, error) {
	var body bytes.Buffer
	if err := tm.PlanCompletedTmpl.Execute(&body, data); err != nil {
		return "", err
	}
	return body.String(), nil
}

// --- HTML Template Definitions ---

const paymentReceivedTemplate = `
<!DOCTYPE html>
<html>
<head>
	<title>Payment Received</title>
</head>
<body style="font-family: Arial, sans-serif;">
	<h2>Thank you, {{.Name}}!</h2>
	<p>We have received your payment of {{.Amount}}.</p>
	<p>Your home-kitchen meals are on the way. You can track your order from your dashboard at any time.</p>
</body>
</html>
`

const orderStatusTemplate = `
<!DOCTYPE html>
<html>
<head>
	<title>Order Update</title>
</head>
<body style="font-family: Arial, sans-serif;">
	<h2>Order update from {{.Kitchen}}</h2>
	<p>Hello {{.Name}},</p>
	<p>Your order is now <strong>{{.Status}}</strong>.</p>
	<p>Bon appétit!</p>
</body>
</html>
`

const planCompletedTemplate = `
<!DOCTYPE html>
<html>
<head>
	<title>Subscription Complete</title>
</head>
<body style="font-family: Arial, sans-serif;">
	<h2>Your meal plan is complete</h2>
	<p>Hello {{.Name}},</p>
	<p>All meals in your plan with {{.Kitchen}} have been delivered.</p>
	{{if .Renewed}}<p>Your plan has been renewed automatically and the next cycle starts right after the current one ends.</p>{{else}}<p>We hope to cook for you again soon.</p>{{end}}
</body>
</html>
`
