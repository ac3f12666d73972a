package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

var templates = template.Must(template.New("mail").Funcs(template.FuncMap{
	"upper": strings.ToUpper,
}).Parse(`
{{define "new_order"}}
<h2>New Order Alert</h2>
<p><strong>Order ID:</strong> {{.OrderID}}</p>
<p><strong>Customer:</strong> {{.Customer}}</p>
<p><strong>Total Amount:</strong> ₹{{.Total}}</p>
<p><strong>Company:</strong> {{if .Company}}{{.Company}}{{else}}N/A{{end}}</p>
<p>Please check the admin dashboard for more details.</p>
{{end}}

{{define "order_cancelled"}}
<h2>Order Cancelled Alert</h2>
<p><strong>Order ID:</strong> {{.OrderID}}</p>
<p><strong>Status:</strong> Cancelled</p>
<p><strong>Total Amount:</strong> ₹{{.Total}}</p>
<p>Please check the admin dashboard for details.</p>
{{end}}

{{define "status_update"}}
<h2>Order Update</h2>
<p>Hello <strong>{{.Name}}</strong>,</p>
<p>Your order <strong>#{{.OrderID}}</strong> status has been updated to:</p>
<h3 style="color: #2563eb;">{{upper .Status}}</h3>
<p>You can check the details in your dashboard.</p>
<br/>
<p>Thank you for shopping with ChemStore!</p>
{{end}}

{{define "login_code"}}
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<h2>Login Verification</h2>
<p>Hello {{.Name}},</p>
<p>Your verification code is:</p>
<h1 style="color: #2563eb; letter-spacing: 5px; font-size: 32px;">{{.Code}}</h1>
<p>This code will expire in {{.Minutes}} minutes.</p>
<p>If you didn't request this, please ignore this email.</p>
</div>
{{end}}

{{define "password_reset"}}
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<h2>Password Reset</h2>
<p>Hello {{.Name}},</p>
<p>Your password has been reset successfully.</p>
<p>Your new temporary password is:</p>
<h3 style="color: #2563eb; background: #f0f9ff; padding: 10px; display: inline-block;">{{.Password}}</h3>
<p>Please login and change your password immediately.</p>
</div>
{{end}}
`))

func render(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s email: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// NewOrderEmail tells admins about a freshly placed order.
func NewOrderEmail(to []string, orderID, customer, company string, total int64) (Message, error) {
	html, err := render("new_order", map[string]interface{}{
		"OrderID": orderID, "Customer": customer, "Company": company, "Total": total,
	})
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: "New Order Received - Order #" + orderID, HTML: html}, nil
}

// OrderCancelledEmail tells admins an order was cancelled.
func OrderCancelledEmail(to []string, orderID string, total int64) (Message, error) {
	html, err := render("order_cancelled", map[string]interface{}{"OrderID": orderID, "Total": total})
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: "Order Cancelled - Order #" + orderID, HTML: html}, nil
}

// StatusUpdateEmail tells a customer their order moved to status.
func StatusUpdateEmail(to, name, orderID, status string) (Message, error) {
	html, err := render("status_update", map[string]interface{}{"Name": name, "OrderID": orderID, "Status": status})
	if err != nil {
		return Message{}, err
	}
	return Message{To: []string{to}, Subject: "Order Status Update - Order #" + orderID, HTML: html}, nil
}

// LoginCodeEmail carries a one-time login code.
func LoginCodeEmail(to, name, code string, minutes int) (Message, error) {
	html, err := render("login_code", map[string]interface{}{"Name": name, "Code": code, "Minutes": minutes})
	if err != nil {
		return Message{}, err
	}
	return Message{To: []string{to}, Subject: "Your Login Verification Code", HTML: html}, nil
}

// PasswordResetEmail carries a temporary password.
func PasswordResetEmail(to, name, password string) (Message, error) {
	html, err := render("password_reset", map[string]interface{}{"Name": name, "Password": password})
	if err != nil {
		return Message{}, err
	}
	return Message{To: []string{to}, Subject: "Password Reset - ChemStore", HTML: html}, nil
}
