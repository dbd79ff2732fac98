package handler

import (
	"html/template"
	"net/http"

	"github.com/labstack/echo/v4"
)

type pageMessage struct {
	Text  string
	Level string
}

type resultPage struct {
	Title       string
	OrderNumber string
	Amount      string
	Messages    []pageMessage
}

var resultTemplate = template.Must(template.New("payment").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Title}}</title>
    <style>
        body { font-family: Helvetica, Arial, sans-serif; background: #f2f2f2; margin: 0; padding: 20px; display: flex; justify-content: center; align-items: center; min-height: 100vh; }
        .box { background: #fff; border-radius: 8px; box-shadow: 0 2px 10px rgba(0,0,0,0.1); padding: 40px; text-align: center; max-width: 420px; width: 100%; }
        h1 { color: #333; margin-bottom: 20px; }
        p { color: #666; margin-bottom: 10px; }
        .warning { color: #a36b00; }
        .error { color: #b00020; }
    </style>
</head>
<body>
    <div class="box">
        <h1>{{.Title}}</h1>
        {{if .OrderNumber}}<p>Order: <span>{{.OrderNumber}}</span></p>{{end}}
        {{if .Amount}}<p>Amount: <span>{{.Amount}}</span></p>{{end}}
        {{range .Messages}}<p class="{{.Level}}">{{.Text}}</p>
        {{end}}
    </div>
</body>
</html>`))

func renderPaymentResult(c echo.Context, page resultPage) error {
	c.Response().Header().Set("Content-Type", "text/html; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	return resultTemplate.Execute(c.Response().Writer, page)
}
