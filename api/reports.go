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
	"strings"

	"github.com/coopledger/coopledger/model"
	"github.com/gin-gonic/gin"
)

func (a Api) GetTrialBalance(c *gin.Context) {
	resp, err := a.ledger.TrialBalance(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a Api) ExportTrialBalanceCSV(c *gin.Context) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="trial-balance.csv"`)
	if err := a.ledger.ExportTrialBalanceCSV(c.Request.Context(), c.Writer); err != nil {
		handleError(c, err)
	}
}

func (a Api) ExportTransactionsCSV(c *gin.Context) {
	filter := model.TransactionFilter{
		Status:    c.Query("status"),
		AccountID: c.Query("account_id"),
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="transactions.csv"`)
	if err := a.ledger.ExportTransactionsCSV(c.Request.Context(), c.Writer, filter); err != nil {
		handleError(c, err)
	}
}

func (a Api) ExportStatementCSV(c *gin.Context) {
	raw, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id"})
		return
	}
	// Accept both /statements/acc_1 and /statements/acc_1.csv.
	id := strings.TrimSuffix(raw, ".csv")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id"})
		return
	}

	from, to, err := periodParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="statement.csv"`)
	if err := a.ledger.ExportStatementCSV(c.Request.Context(), c.Writer, id, from, to); err != nil {
		handleError(c, err)
	}
}
