/*
Copyright 2025 Coopledger Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package api

import (
	"net/http"

	"github.com/coopledger/coopledger"
	"github.com/coopledger/coopledger/api/middleware"
	"github.com/coopledger/coopledger/config"
	"github.com/coopledger/coopledger/internal/apierror"
	"github.com/gin-gonic/gin"
)

type Api struct {
	ledger *coopledger.Coopledger
	router *gin.Engine
}

func (a Api) Router() *gin.Engine {
	router := a.router
	router.POST("/accounts", a.CreateAccount)
	router.GET("/accounts/:id", a.GetAccount)
	router.GET("/accounts", a.GetAllAccounts)
	router.DELETE("/accounts/:id", a.ArchiveAccount)
	router.GET("/accounts/:id/balance", a.GetAccountBalance)
	router.GET("/accounts/:id/statement", a.GetAccountStatement)

	router.POST("/transactions", a.OpenTransaction)
	router.GET("/transactions/:id", a.GetTransaction)
	router.GET("/transactions", a.GetAllTransactions)
	router.GET("/transactions/:id/validate", a.ValidateTransaction)
	router.POST("/transactions/:id/post", a.PostTransaction)
	router.POST("/transactions/:id/reverse", a.ReverseTransaction)

	router.POST("/members", a.CreateMember)
	router.GET("/members/:id", a.GetMember)
	router.GET("/members", a.GetAllMembers)
	router.PUT("/members/:id", a.UpdateMember)
	router.GET("/members/:id/savings", a.GetMemberSavingsAccounts)
	router.GET("/members/:id/loans", a.GetMemberLoans)

	router.POST("/savings", a.OpenSavingsAccount)
	router.GET("/savings/:id", a.GetSavingsAccount)
	router.POST("/savings/:id/deposit", a.Deposit)
	router.POST("/savings/:id/withdraw", a.Withdraw)

	router.POST("/loans", a.CreateLoan)
	router.GET("/loans/:id", a.GetLoan)
	router.POST("/loans/:id/approve", a.ApproveLoan)
	router.POST("/loans/:id/reject", a.RejectLoan)
	router.POST("/loans/:id/disburse", a.DisburseLoan)
	router.POST("/loans/:id/repay", a.RepayLoan)

	router.POST("/metadata/:entity-id", a.UpdateMetadata)

	router.GET("/reports/trial-balance", a.GetTrialBalance)
	router.GET("/reports/trial-balance.csv", a.ExportTrialBalanceCSV)
	router.GET("/reports/transactions.csv", a.ExportTransactionsCSV)
	router.GET("/reports/statements/:id", a.ExportStatementCSV)

	return a.router
}

func NewAPI(ledger *coopledger.Coopledger) *Api {
	gin.SetMode(gin.ReleaseMode)
	conf, err := config.Fetch()
	if err != nil {
		return nil
	}
	r := gin.Default()
	if conf.Server.Secure {
		r.Use(middleware.SecretKeyAuthMiddleware())
	}
	r.Use(middleware.RateLimitMiddleware(conf))

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, "server running...")
	})

	return &Api{ledger: ledger, router: r}
}

// handleError maps engine error codes onto HTTP statuses.
func handleError(c *gin.Context, err error) {
	apiErr, ok := err.(apierror.APIError)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(apierror.MapErrorToHTTPStatus(apiErr), gin.H{"error": apiErr.Message, "code": apiErr.Code})
}
