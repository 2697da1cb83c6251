package simulation

// Status is the verdict of a simulated game
type Status string

const (
	StatusWin  Status = "Win"
	StatusLoss Status = "Loss"
)

// Request describes one simulated investment
type Request struct {
	Tickers       []string  `json:"tickers" validate:"required,min=1,max=50,dive,required,max=16"`
	Weights       []float64 `json:"weights" validate:"required,min=1,dive,gte=0"`
	InitialAmount float64   `json:"initial_amount" validate:"gt=0"`
	GoalAmount    float64   `json:"goal_amount" validate:"gt=0"`
	TimeSpan      int       `json:"time_span" validate:"gt=0,lte=600"`
}

// Result is the projected outcome of a simulation
type Result struct {
	FinalValue  float64 `json:"final_value"`
	GoalAmount  float64 `json:"goal_amount"`
	SharpeRatio float64 `json:"sharpe_ratio"`
	Volatility  float64 `json:"volatility"`
	Status      Status  `json:"status"`
	Message     string  `json:"message"`
}

var winMessages = []string{
	"Congrats! You met your investment goal!",
	"Your client is thrilled. The portfolio delivered.",
	"Well balanced. Risk and reward worked in your favor.",
	"Goal reached. Your client is already planning the next one.",
}

var lossMessages = []string{
	"Your portfolio did not meet the goal.",
	"The market had other plans. Try a different mix.",
	"Close, but your client is still short of the target.",
	"Too much risk or too little return. Rebalance and try again.",
}
