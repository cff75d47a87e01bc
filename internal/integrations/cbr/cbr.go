package cbr

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/dkovalev/transactions-api/internal/config"
	"github.com/sirupsen/logrus"
)

// CBRClient handles integration with Central Bank of Russia
type CBRClient struct {
	url    string
	client *http.Client
	log    *logrus.Logger
}

// NewCBRClient initializes a new CBR client
func NewCBRClient(cfg *config.Config, log *logrus.Logger) *CBRClient {
	return &CBRClient{
		url: cfg.CBRURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

// buildSOAPRequest creates a SOAP request for today's official exchange rates
func (c *CBRClient) buildSOAPRequest() string {
	onDate := time.Now().Format("2006-01-02")
	return fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
		<soap12:Envelope xmlns:soap12="http://www.w3.org/2003/05/soap-envelope">
			<soap12:Body>
				<GetCursOnDate xmlns="http://web.cbr.ru/">
					<On_date>%s</On_date>
				</GetCursOnDate>
			</soap12:Body>
		</soap12:Envelope>`, onDate)
}

// sendRequest sends SOAP request to CBR
func (c *CBRClient) sendRequest(soapRequest string) ([]byte, error) {
	req, err := http.NewRequest("POST", c.url, bytes.NewBuffer([]byte(soapRequest)))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/soap+xml; charset=utf-8")
	req.Header.Set("SOAPAction", "http://web.cbr.ru/GetCursOnDate")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %v", err)
	}

	c.log.Debugf("CBR XML response: %s", string(body))

	return body, nil
}

// parseXMLResponse extracts the rate for the given currency code
func (c *CBRClient) parseXMLResponse(rawBody []byte, code string) (float64, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(rawBody); err != nil {
		return 0, fmt.Errorf("failed to parse XML: %v", err)
	}

	valutes := doc.FindElements("//ValuteData/ValuteCursOnDate")
	if len(valutes) == 0 {
		return 0, fmt.Errorf("no exchange rate data found in XML")
	}

	for _, valute := range valutes {
		codeElement := valute.FindElement("./VchCode")
		if codeElement == nil || !strings.EqualFold(strings.TrimSpace(codeElement.Text()), code) {
			continue
		}
		rateElement := valute.FindElement("./Vcurs")
		if rateElement == nil {
			return 0, fmt.Errorf("rate element not found for %s", code)
		}
		var rate float64
		if _, err := fmt.Sscanf(strings.TrimSpace(rateElement.Text()), "%f", &rate); err != nil {
			return 0, fmt.Errorf("failed to parse rate: %v", err)
		}
		return rate, nil
	}

	return 0, fmt.Errorf("currency %s not found in CBR response", code)
}

// GetExchangeRate retrieves today's official rate for a currency code, in RUB
func (c *CBRClient) GetExchangeRate(code string) (float64, error) {
	soapRequest := c.buildSOAPRequest()
	body, err := c.sendRequest(soapRequest)
	if err != nil {
		return 0, err
	}

	rate, err := c.parseXMLResponse(body, code)
	if err != nil {
		return 0, err
	}

	c.log.Infof("Retrieved exchange rate for %s: %.4f RUB", code, rate)
	return rate, nil
}
