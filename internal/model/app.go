package model

const (
	AppServiceName = "order_csv_exporter"
	NamespaceName  = "shopops"
	CurrentVersion = "1.0.0"
)
