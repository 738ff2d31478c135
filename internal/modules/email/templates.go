package email

import (
	"embed"
	htmltemplate "html/template"
	texttemplate "text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const disclaimer = "All business being carried out with any party shall be conducted in accordance with our Standard Trading Conditions available on chronopost.mu. " +
	"Any views expressed in this email are those of the sender only. " +
	"The content of this email is confidential and intended solely for the use of the recipient(s). " +
	"If received in error, it should be removed from the system without being read, copied, distributed or disclosed to anyone. " +
	"Every care has been taken for this email to reach the recipient(s) free from computer viruses. " +
	"No liability will be accepted for any loss or damage which may be caused. " +
	"We process your personal data in accordance with the Data Protection Act 2017, which is itself aligned with the General Data Protection Regulation."

var (
	htmlTmpl = htmltemplate.Must(htmltemplate.New("payment_link.html.tmpl").
			Funcs(htmltemplate.FuncMap{"disclaimer": func() string { return disclaimer }}).
			ParseFS(templateFS, "templates/payment_link.html.tmpl"))
	textTmpl = texttemplate.Must(texttemplate.New("payment_link.txt.tmpl").
			Funcs(texttemplate.FuncMap{"disclaimer": func() string { return disclaimer }}).
			ParseFS(templateFS, "templates/payment_link.txt.tmpl"))
)
