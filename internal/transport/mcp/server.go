package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sjpiano/paytrack/internal/application/directory"
	"github.com/sjpiano/paytrack/internal/application/ledger"
	"github.com/sjpiano/paytrack/internal/application/receipt"
	"github.com/sjpiano/paytrack/internal/application/reconcile"
)

const (
	serverName    = "paytrack"
	serverVersion = "0.1.0"
)

// Deps holds the application services the tool surface exposes.
type Deps struct {
	Mail       mailSource
	Directory  directory.Service
	Ledger     ledger.Service
	Receipts   receipt.Service
	Reconciler reconcile.Service
}

// NewServer builds the MCP server with every payment tool registered.
func NewServer(deps Deps) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)

	mcp.AddTool(server, SearchTransferEmailsTool(), SearchTransferEmailsHandler(deps.Mail))
	mcp.AddTool(server, FindStudentTool(), FindStudentHandler(deps.Directory))
	mcp.AddTool(server, CheckInvoiceTool(), CheckInvoiceHandler(deps.Ledger))
	mcp.AddTool(server, CreateInvoiceTool(), CreateInvoiceHandler(deps.Ledger))
	mcp.AddTool(server, SendReceiptTool(), SendReceiptHandler(deps.Receipts))
	mcp.AddTool(server, RunReconciliationTool(), RunReconciliationHandler(deps.Reconciler))

	return server
}

// Serve runs the server over stdio until the context is canceled.
func Serve(ctx context.Context, deps Deps) error {
	return NewServer(deps).Run(ctx, &mcp.StdioTransport{})
}
