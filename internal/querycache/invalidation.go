package querycache

// Cached resource prefixes. Every cache key starts with one of these.
const (
	ResAdminMarkets         = "adminMarkets"
	ResResolvableMarkets    = "resolvableMarkets"
	ResScheduledResolutions = "scheduledResolutions"
	ResLowLiquidityMarkets  = "lowLiquidityMarkets"
	ResPausedMarkets        = "pausedMarkets"
	ResMarketHealth         = "marketHealth"
	ResAdminDashboard       = "adminDashboard"
	ResAdminUsers           = "adminUsers"
	ResUserBalanceHistory   = "userBalanceHistory"
	ResDeposits             = "deposits"
	ResWithdrawals          = "withdrawals"
	ResDisputes             = "disputes"
	ResDisputeStats         = "disputeStats"
	ResTransactions         = "transactions"
	ResLargeTransactions    = "largeTransactions"
	ResTreasury             = "treasury"
	ResLiquidity            = "liquidity"
	ResNegativeBalances     = "negativeBalances"
	ResTopHolders           = "topHolders"
)

// Console mutation names, as recorded in metrics, audit entries, and
// realtime invalidation events.
const (
	MutMarketCreate        = "market.create"
	MutMarketUpdate        = "market.update"
	MutMarketDelete        = "market.delete"
	MutMarketClose         = "market.close"
	MutMarketResolve       = "market.resolve"
	MutMarketSchedule      = "market.scheduleResolution"
	MutMarketPause         = "market.pause"
	MutMarketResume        = "market.resume"
	MutDepositCreate       = "deposit.create"
	MutDepositVerify       = "deposit.verify"
	MutDepositReject       = "deposit.reject"
	MutWithdrawalApprove   = "withdrawal.approve"
	MutWithdrawalReject    = "withdrawal.reject"
	MutDisputeStatus       = "dispute.updateStatus"
	MutDisputePriority     = "dispute.updatePriority"
	MutUserBalanceAdjust   = "user.balanceAdjust"
	MutUserBalanceFreeze   = "user.balanceFreeze"
	MutUserBalanceUnfreeze = "user.balanceUnfreeze"
	MutUserPromote         = "user.promote"
	MutUserDemote          = "user.demote"
)

// invalidations is the full mutation-to-resources table. It is static
// and exhaustive: adding a mutation without an entry here is a bug that
// InvalidateFor logs at error level.
var invalidations = map[string][]string{
	MutMarketCreate:   {ResAdminMarkets, ResAdminDashboard},
	MutMarketUpdate:   {ResAdminMarkets, ResResolvableMarkets},
	MutMarketDelete:   {ResAdminMarkets, ResAdminDashboard},
	MutMarketClose:    {ResAdminMarkets, ResResolvableMarkets, ResAdminDashboard},
	MutMarketResolve:  {ResResolvableMarkets, ResScheduledResolutions, ResAdminMarkets, ResAdminDashboard},
	MutMarketSchedule: {ResScheduledResolutions, ResResolvableMarkets},
	MutMarketPause:    {ResPausedMarkets, ResAdminMarkets, ResLowLiquidityMarkets, ResMarketHealth},
	MutMarketResume:   {ResPausedMarkets, ResAdminMarkets, ResLowLiquidityMarkets, ResMarketHealth},

	MutDepositCreate: {ResDeposits, ResTransactions, ResAdminDashboard},
	MutDepositVerify: {ResDeposits, ResTransactions, ResAdminDashboard},
	MutDepositReject: {ResDeposits, ResTransactions, ResAdminDashboard},

	MutWithdrawalApprove: {ResWithdrawals, ResTransactions, ResAdminDashboard},
	MutWithdrawalReject:  {ResWithdrawals, ResTransactions, ResAdminDashboard},

	MutDisputeStatus:   {ResDisputes, ResDisputeStats},
	MutDisputePriority: {ResDisputes, ResDisputeStats},

	MutUserBalanceAdjust:   {ResAdminUsers, ResUserBalanceHistory, ResTransactions},
	MutUserBalanceFreeze:   {ResAdminUsers, ResUserBalanceHistory},
	MutUserBalanceUnfreeze: {ResAdminUsers, ResUserBalanceHistory},
	MutUserPromote:         {ResAdminUsers},
	MutUserDemote:          {ResAdminUsers},
}

// Keys returns the resources staled by a mutation.
func Keys(mutation string) ([]string, bool) {
	resources, ok := invalidations[mutation]
	return resources, ok
}

// Mutations lists every known mutation name. Used by tests and the
// audit screen's filter dropdown.
func Mutations() []string {
	out := make([]string, 0, len(invalidations))
	for m := range invalidations {
		out = append(out, m)
	}
	return out
}
